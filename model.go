package docqa

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flarexio/docqa/chunk"
	"github.com/flarexio/docqa/embedding"
	"github.com/flarexio/docqa/generation"
	"github.com/flarexio/docqa/vector"
)

var (
	ErrEmptyQuestion         = errors.New("question must not be empty")
	ErrEmptyIndex            = errors.New("no chunks to index")
	ErrGenerationTimeout     = errors.New("answer generation timed out")
	ErrServiceClosed         = errors.New("service closed")
	ErrDocumentPathRequired  = errors.New("document path is required")
	ErrInvalidChunkDocument  = errors.New("invalid chunk document")
	ErrInvalidRequest        = errors.New("invalid request type")
	ErrInvalidResponse       = errors.New("invalid response type")
	ErrMethodNotImplemented  = errors.New("method not implemented")
	ErrInvalidRetrievalDepth = errors.New("retrieval k must be positive")
)

type ContextKey string

const (
	RequestID ContextKey = "request_id"
)

const (
	DefaultRetrievalK        = 3
	DefaultAnswerTimeout     = 60 * time.Second
	DefaultAnswerConcurrency = 4
	DefaultCollection        = "document"
	DefaultHTTPAddr          = ":8000"
	DefaultNATSTopic         = "docqa"
	DefaultNATSTimeout       = 90 * time.Second
)

type Config struct {
	Document   DocumentConfig    `yaml:"document"`
	Chunking   chunk.Config      `yaml:"chunking"`
	Retrieval  RetrievalConfig   `yaml:"retrieval"`
	Answer     AnswerConfig      `yaml:"answer"`
	Embedding  embedding.Config  `yaml:"embedding"`
	Generation generation.Config `yaml:"generation"`
	Vector     vector.Config     `yaml:"vector"`
	HTTP       HTTPConfig        `yaml:"http"`
	NATS       NATSConfig        `yaml:"nats"`
}

type DocumentConfig struct {
	Path string `yaml:"path"`
}

type RetrievalConfig struct {
	K int `yaml:"k"`
}

type AnswerConfig struct {
	// Timeout bounds one whole answer, including the wait for a generation
	// slot. Zero disables it.
	Timeout     Duration `yaml:"timeout"`
	Concurrency int      `yaml:"concurrency"`
}

type HTTPConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

type NATSConfig struct {
	URL     string   `yaml:"url"`
	Topic   string   `yaml:"topic"`
	Timeout Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Chunking: chunk.DefaultConfig(),
		Retrieval: RetrievalConfig{
			K: DefaultRetrievalK,
		},
		Answer: AnswerConfig{
			Timeout:     Duration(DefaultAnswerTimeout),
			Concurrency: DefaultAnswerConcurrency,
		},
		Embedding:  embedding.DefaultConfig(),
		Generation: generation.DefaultConfig(),
		Vector: vector.Config{
			Collection: DefaultCollection,
		},
		HTTP: HTTPConfig{
			Addr:         DefaultHTTPAddr,
			AllowOrigins: []string{"*"},
		},
		NATS: NATSConfig{
			Topic:   DefaultNATSTopic,
			Timeout: Duration(DefaultNATSTimeout),
		},
	}
}

// LoadConfig decodes the YAML file at path onto DefaultConfig. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return cfg, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.Document.Path == "" {
		return ErrDocumentPathRequired
	}

	if err := cfg.Chunking.Validate(); err != nil {
		return err
	}

	if cfg.Retrieval.K <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidRetrievalDepth, cfg.Retrieval.K)
	}

	if cfg.Answer.Timeout < 0 {
		return fmt.Errorf("answer timeout must not be negative, got %s", cfg.Answer.Timeout.Duration())
	}

	if cfg.Answer.Concurrency <= 0 {
		return fmt.Errorf("answer concurrency must be positive, got %d", cfg.Answer.Concurrency)
	}

	if err := cfg.Embedding.Validate(); err != nil {
		return err
	}

	return cfg.Generation.Validate()
}

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration().String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

// Passage is one retrieved chunk together with its similarity to the query.
type Passage struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

func ChunkToDocument(c chunk.Chunk) vector.Document {
	return vector.Document{
		ID:      chunkDocumentID(c.Index),
		Content: c.Text,
		Metadata: map[string]string{
			"index": strconv.Itoa(c.Index),
		},
	}
}

// Zero padding keeps lexical ID order equal to reading order.
func chunkDocumentID(index int) string {
	return fmt.Sprintf("chunk-%06d", index)
}

func DocumentToPassage(doc vector.Document) (Passage, error) {
	raw, ok := doc.Metadata["index"]
	if !ok {
		return Passage{}, fmt.Errorf("%w: %s has no index", ErrInvalidChunkDocument, doc.ID)
	}

	index, err := strconv.Atoi(raw)
	if err != nil {
		return Passage{}, fmt.Errorf("%w: %s: %w", ErrInvalidChunkDocument, doc.ID, err)
	}

	return Passage{
		Index: index,
		Text:  doc.Content,
		Score: doc.Similarity,
	}, nil
}
