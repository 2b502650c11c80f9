package docqa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/flarexio/docqa/generation"
	"github.com/flarexio/docqa/vector"
)

// Service answers questions about a single indexed document.
type Service interface {

	// Close releases the service; later calls fail with ErrServiceClosed.
	Close() error

	// Ask retrieves the passages closest to the question and has the
	// generator answer from them only.
	Ask(ctx context.Context, question string) (string, error)

	// Search returns the k passages closest to the query, best first. Without
	// k the configured retrieval depth is used; k below 1 means 1.
	Search(ctx context.Context, query string, k ...int) ([]Passage, error)
}

type ServiceMiddleware func(Service) Service

func NewService(cfg Config, collection vector.Collection, generator generation.Generator) (Service, error) {
	if collection.Count() == 0 {
		return nil, ErrEmptyIndex
	}

	k := cfg.Retrieval.K
	if k <= 0 {
		k = DefaultRetrievalK
	}

	concurrency := cfg.Answer.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultAnswerConcurrency
	}

	log := zap.L().With(
		zap.String("service", "docqa"),
	)

	return &service{
		collection: collection,
		generator:  generator,
		slots:      semaphore.NewWeighted(int64(concurrency)),
		k:          k,
		timeout:    cfg.Answer.Timeout.Duration(),
		log:        log,
	}, nil
}

type service struct {
	// Read-only after construction; the collection is safe for concurrent
	// queries by itself.
	collection vector.Collection
	generator  generation.Generator

	// Bounds the number of in-flight generations.
	slots *semaphore.Weighted

	k       int
	timeout time.Duration
	closed  atomic.Bool
	log     *zap.Logger
}

func (svc *service) Close() error {
	svc.closed.Store(true)
	return nil
}

func (svc *service) Search(ctx context.Context, query string, k ...int) ([]Passage, error) {
	if svc.closed.Load() {
		return nil, ErrServiceClosed
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuestion
	}

	n := svc.k
	if len(k) > 0 {
		n = max(k[0], 1)
	}

	docs, err := svc.collection.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	passages := make([]Passage, len(docs))
	for i, doc := range docs {
		p, err := DocumentToPassage(doc)
		if err != nil {
			return nil, err
		}

		passages[i] = p
	}

	return passages, nil
}

func (svc *service) Ask(ctx context.Context, question string) (string, error) {
	if svc.closed.Load() {
		return "", ErrServiceClosed
	}

	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	if svc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.timeout)
		defer cancel()
	}

	passages, err := svc.Search(ctx, question)
	if err != nil {
		return "", svc.failure(ctx, err)
	}

	if err := svc.slots.Acquire(ctx, 1); err != nil {
		return "", svc.failure(ctx, err)
	}
	defer svc.slots.Release(1)

	prompt := BuildPrompt(passages, question)

	answer, err := svc.generator.Generate(ctx, prompt)
	if err != nil {
		return "", svc.failure(ctx, fmt.Errorf("generate: %w", err))
	}

	return answer, nil
}

func (svc *service) failure(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		svc.log.Warn("answer deadline exceeded",
			zap.Duration("timeout", svc.timeout),
			zap.Error(err),
		)

		return ErrGenerationTimeout
	}

	return err
}
