package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

func NewOllamaGenerator(cfg Config) (Generator, error) {
	host := envconfig.Host()
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama url: %w", err)
		}

		host = u
	}

	return &ollamaGenerator{
		client:      api.NewClient(host, http.DefaultClient),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

type ollamaGenerator struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float64
}

func (g *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false

	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"num_predict": g.maxTokens,
			"temperature": g.temperature,
		},
	}

	var answer strings.Builder

	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		_, err := answer.WriteString(resp.Response)
		return err
	})

	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return answer.String(), nil
}
