package vector

import "context"

type Config struct {
	Collection  string `yaml:"collection"`
	Concurrency int    `yaml:"concurrency"`
}

type VectorDB interface {
	Collection(name string) (Collection, error)
}

// Collection is a similarity-searchable set of documents. Implementations
// embed Content themselves and are safe for concurrent queries.
type Collection interface {
	AddDocuments(ctx context.Context, docs []Document) error
	Count() int

	// Query returns at most k documents ordered by similarity, descending.
	// Equal similarities are ordered by ID.
	Query(ctx context.Context, query string, k int) ([]Document, error)
}

type Document struct {
	ID         string            `json:"id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Content    string            `json:"content"`
	Embedding  []float32         `json:"embedding,omitempty"`
	Similarity float32           `json:"similarity,omitempty"`
}
