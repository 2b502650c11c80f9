package docqa

import (
	"context"
)

// ProxyMiddleware discards the wrapped service and serves every call through
// remote endpoints.
func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) Close() error {
	return ErrMethodNotImplemented
}

func (mw *proxyMiddleware) Ask(ctx context.Context, question string) (string, error) {
	req := AskRequest{
		Question: question,
	}

	resp, err := mw.endpoints.Ask(ctx, req)
	if err != nil {
		return "", err
	}

	result, ok := resp.(AskResponse)
	if !ok {
		return "", ErrInvalidResponse
	}

	return result.Answer, nil
}

func (mw *proxyMiddleware) Search(ctx context.Context, query string, k ...int) ([]Passage, error) {
	req := SearchRequest{
		Query: query,
	}

	if len(k) > 0 {
		// Zero on the wire means the server default.
		req.K = max(k[0], 1)
	}

	resp, err := mw.endpoints.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	passages, ok := resp.([]Passage)
	if !ok {
		return nil, ErrInvalidResponse
	}

	return passages, nil
}
