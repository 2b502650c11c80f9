package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAIEmbedder works with any OpenAI-compatible API, OpenRouter included.
func NewOpenAIEmbedder(baseURL string, apiKey string, model string) (Embedder, error) {
	opts := []openai.Option{
		openai.WithEmbeddingModel(model),
	}

	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	if apiKey != "" {
		opts = append(opts, openai.WithToken(apiKey))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("openai embedder: %w", err)
	}

	return &openAIEmbedder{embedder}, nil
}

type openAIEmbedder struct {
	embedder *embeddings.EmbedderImpl
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	if len(vector) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return vector, nil
}
