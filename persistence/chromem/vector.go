package chromem

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"

	"github.com/philippgille/chromem-go"

	"github.com/flarexio/docqa/embedding"
	"github.com/flarexio/docqa/vector"
)

// NewChromemVectorDB returns an in-memory vector database whose collections
// embed documents and queries with the given embedder.
func NewChromemVectorDB(cfg vector.Config, embedder embedding.Embedder) (vector.VectorDB, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &chromemVectorDB{
		db:          chromem.NewDB(),
		embed:       normalizedEmbeddingFunc(embedder),
		concurrency: concurrency,
	}, nil
}

type chromemVectorDB struct {
	db          *chromem.DB
	embed       chromem.EmbeddingFunc
	concurrency int
}

func (vector *chromemVectorDB) Collection(name string) (vector.Collection, error) {
	c, err := vector.db.GetOrCreateCollection(name, nil, vector.embed)
	if err != nil {
		return nil, err
	}

	return &collection{c, vector.concurrency}, nil
}

// chromem scores by dot product, so vectors must have unit length.
func normalizedEmbeddingFunc(embedder embedding.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		v, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}

		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}

		if norm == 0 {
			return v, nil
		}

		norm = math.Sqrt(norm)

		normalized := make([]float32, len(v))
		for i, x := range v {
			normalized[i] = float32(float64(x) / norm)
		}

		return normalized, nil
	}
}

type collection struct {
	collection  *chromem.Collection
	concurrency int
}

func (c *collection) AddDocuments(ctx context.Context, docs []vector.Document) error {
	documents := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		documents[i] = chromem.Document{
			ID:        doc.ID,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
			Content:   doc.Content,
		}
	}

	return c.collection.AddDocuments(ctx, documents, c.concurrency)
}

func (c *collection) Count() int {
	return c.collection.Count()
}

func (c *collection) Query(ctx context.Context, query string, k int) ([]vector.Document, error) {
	n := c.collection.Count()
	if n == 0 || k <= 0 {
		return []vector.Document{}, nil
	}

	if k > n {
		k = n
	}

	// Score every document so that ties at the cut are broken by ID rather
	// than by chromem's concurrent scan order.
	results, err := c.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b chromem.Result) int {
		if a.Similarity != b.Similarity {
			return cmp.Compare(b.Similarity, a.Similarity)
		}

		return cmp.Compare(a.ID, b.ID)
	})

	results = results[:k]

	docs := make([]vector.Document, len(results))
	for i, result := range results {
		docs[i] = vector.Document{
			ID:         result.ID,
			Metadata:   result.Metadata,
			Embedding:  result.Embedding,
			Content:    result.Content,
			Similarity: result.Similarity,
		}
	}

	return docs, nil
}
