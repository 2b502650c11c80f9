package docqa

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flarexio/docqa/chunk"
	"github.com/flarexio/docqa/document"
	"github.com/flarexio/docqa/vector"
)

// IndexChunks embeds every chunk and stores it in the collection in one
// batch.
func IndexChunks(ctx context.Context, collection vector.Collection, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyIndex
	}

	docs := make([]vector.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = ChunkToDocument(c)
	}

	if err := collection.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}

	return nil
}

// Ingest loads the configured PDF, chunks it and indexes the chunks. It
// returns the number of chunks indexed.
func Ingest(ctx context.Context, cfg Config, collection vector.Collection) (int, error) {
	log := zap.L().With(
		zap.String("service", "docqa"),
		zap.String("action", "ingest"),
		zap.String("document", cfg.Document.Path),
	)

	log.Info("loading document")

	text, err := document.LoadPDF(cfg.Document.Path)
	if err != nil {
		return 0, err
	}

	return IngestText(ctx, cfg, collection, text)
}

// IngestText chunks and indexes already extracted text.
func IngestText(ctx context.Context, cfg Config, collection vector.Collection, text string) (int, error) {
	log := zap.L().With(
		zap.String("service", "docqa"),
		zap.String("action", "ingest"),
	)

	splitter, err := chunk.NewSplitter(cfg.Chunking)
	if err != nil {
		return 0, err
	}

	chunks, err := splitter.Split(text)
	if err != nil {
		return 0, fmt.Errorf("split text: %w", err)
	}

	log.Info("text chunked",
		zap.Int("chars", len([]rune(text))),
		zap.Int("chunks", len(chunks)),
	)

	start := time.Now()

	if err := IndexChunks(ctx, collection, chunks); err != nil {
		return 0, err
	}

	log.Info("chunks indexed",
		zap.Int("count", collection.Count()),
		zap.Duration("duration", time.Since(start)),
	)

	return len(chunks), nil
}
