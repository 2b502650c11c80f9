package chunk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

var ErrInvalidConfig = errors.New("invalid chunking config")

// Separators are tried in order; the coarsest one present in the text wins.
var Separators = []string{"\n\n", "\n", " ", ""}

type Config struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

func DefaultConfig() Config {
	return Config{
		Size:    DefaultSize,
		Overlap: DefaultOverlap,
	}
}

func (cfg Config) Validate() error {
	if cfg.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, cfg.Size)
	}

	if cfg.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, cfg.Overlap)
	}

	if cfg.Overlap >= cfg.Size {
		return fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidConfig, cfg.Overlap, cfg.Size)
	}

	return nil
}

// Chunk is one retrieval unit, Index is its position in reading order.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Splitter struct {
	cfg      Config
	splitter textsplitter.RecursiveCharacter
}

func NewSplitter(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.Size),
		textsplitter.WithChunkOverlap(cfg.Overlap),
		textsplitter.WithSeparators(Separators),
	)

	return &Splitter{
		cfg:      cfg,
		splitter: splitter,
	}, nil
}

func (s *Splitter) Config() Config {
	return s.cfg
}

// Split cuts text into overlapping chunks of at most Size characters.
func (s *Splitter) Split(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  part,
		})
	}

	return chunks, nil
}
