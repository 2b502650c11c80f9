package generation

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnsupportedProvider = errors.New("unsupported generation provider")

// Generator turns a prompt into text. Implementations must be safe for
// concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

const DefaultMaxTokens = 500

type Config struct {
	Provider    Provider `yaml:"provider"`
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"baseURL"`
	APIKey      string   `yaml:"apiKey"`
	MaxTokens   int      `yaml:"maxTokens"`
	Temperature float64  `yaml:"temperature"`
}

func DefaultConfig() Config {
	return Config{
		Provider:  ProviderOllama,
		Model:     "llama3.2",
		MaxTokens: DefaultMaxTokens,
	}
}

func (cfg Config) Validate() error {
	switch cfg.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}

	if cfg.Model == "" {
		return fmt.Errorf("generation model is required for provider %s", cfg.Provider)
	}

	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("generation maxTokens must be positive, got %d", cfg.MaxTokens)
	}

	return nil
}

func New(cfg Config) (Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg)

	default:
		return NewOllamaGenerator(cfg)
	}
}
