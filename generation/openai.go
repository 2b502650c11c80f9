package generation

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAIGenerator works with any OpenAI-compatible chat completion API.
func NewOpenAIGenerator(cfg Config) (Generator, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	return &openAIGenerator{
		llm:         llm,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

type openAIGenerator struct {
	llm         llms.Model
	maxTokens   int
	temperature float64
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	answer, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithMaxTokens(g.maxTokens),
		llms.WithTemperature(g.temperature),
	)

	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}

	return answer, nil
}
