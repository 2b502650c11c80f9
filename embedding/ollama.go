package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// NewOllamaEmbedder talks to an Ollama server. An empty baseURL falls back to
// OLLAMA_HOST or the local default.
func NewOllamaEmbedder(baseURL string, model string) (Embedder, error) {
	host := envconfig.Host()
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama url: %w", err)
		}

		host = u
	}

	return &ollamaEmbedder{
		client: api.NewClient(host, http.DefaultClient),
		model:  model,
	}, nil
}

type ollamaEmbedder struct {
	client *api.Client
	model  string
}

func (e *ollamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &api.EmbedRequest{
		Model: e.model,
		Input: text,
	}

	resp, err := e.client.Embed(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return resp.Embeddings[0], nil
}
