package docqa

import (
	"context"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	Ask    endpoint.Endpoint
	Search endpoint.Endpoint
}

func MakeEndpoints(svc Service) EndpointSet {
	return EndpointSet{
		Ask:    AskEndpoint(svc),
		Search: SearchEndpoint(svc),
	}
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

func AskEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(AskRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		answer, err := svc.Ask(ctx, req.Question)
		if err != nil {
			return nil, err
		}

		return AskResponse{answer}, nil
	}
}

// SearchRequest with K zero asks for the configured retrieval depth.
type SearchRequest struct {
	Query string `json:"query" form:"query"`
	K     int    `json:"k,omitempty" form:"k"`
}

func SearchEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SearchRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		if req.K == 0 {
			return svc.Search(ctx, req.Query)
		}

		return svc.Search(ctx, req.Query, req.K)
	}
}
