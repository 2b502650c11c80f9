package docqa

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "docqa"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) withRequest(ctx context.Context, log *zap.Logger) *zap.Logger {
	requestID, ok := ctx.Value(RequestID).(string)
	if ok {
		log = log.With(
			zap.String("request_id", requestID),
		)
	}

	return log
}

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}

func (mw *loggingMiddleware) Ask(ctx context.Context, question string) (string, error) {
	log := mw.withRequest(ctx, mw.log.With(
		zap.String("action", "ask"),
		zap.String("question", question),
	))

	start := time.Now()

	answer, err := mw.next.Ask(ctx, question)
	if err != nil {
		log.Error(err.Error(), zap.Duration("duration", time.Since(start)))
		return "", err
	}

	log.Info("question answered",
		zap.Int("answer_len", len(answer)),
		zap.Duration("duration", time.Since(start)),
	)

	return answer, nil
}

func (mw *loggingMiddleware) Search(ctx context.Context, query string, k ...int) ([]Passage, error) {
	log := mw.withRequest(ctx, mw.log.With(
		zap.String("action", "search"),
		zap.String("query", query),
	))

	if len(k) > 0 {
		log = log.With(
			zap.Int("k", k[0]),
		)
	}

	start := time.Now()

	passages, err := mw.next.Search(ctx, query, k...)
	if err != nil {
		log.Error(err.Error(), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	log.Info("passages retrieved",
		zap.Int("count", len(passages)),
		zap.Duration("duration", time.Since(start)),
	)

	return passages, nil
}
