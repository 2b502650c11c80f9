package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

const DefaultHashDimension = 512

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// NewHashEmbedder returns a deterministic bag-of-words embedder that hashes
// lower-cased tokens into a fixed number of buckets. It needs no model and is
// meant for tests and offline runs.
func NewHashEmbedder(dimension int) Embedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}

	return &hashEmbedder{dimension}
}

type hashEmbedder struct {
	dimension int
}

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		// keeps the vector non-zero for punctuation-only text
		tokens = []string{strings.TrimSpace(text)}
	}

	vector := make([]float32, e.dimension)
	for _, token := range tokens {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%uint32(e.dimension)]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}

	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}

	return vector, nil
}
