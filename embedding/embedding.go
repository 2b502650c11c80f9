package embedding

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	ErrEmptyEmbedding      = errors.New("empty embedding")
)

// Embedder maps text to a fixed-dimensional vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderHash   Provider = "hash"
)

type Config struct {
	Provider  Provider `yaml:"provider"`
	Model     string   `yaml:"model"`
	BaseURL   string   `yaml:"baseURL"`
	APIKey    string   `yaml:"apiKey"`
	Dimension int      `yaml:"dimension"`
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderOllama,
		Model:    "all-minilm",
	}
}

func (cfg Config) Validate() error {
	switch cfg.Provider {
	case ProviderOllama, ProviderOpenAI:
		if cfg.Model == "" {
			return fmt.Errorf("embedding model is required for provider %s", cfg.Provider)
		}

	case ProviderHash:

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}

	return nil
}

func New(cfg Config) (Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaEmbedder(cfg.BaseURL, cfg.Model)

	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model)

	default:
		return NewHashEmbedder(cfg.Dimension), nil
	}
}
