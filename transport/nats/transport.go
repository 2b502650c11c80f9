package nats

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/docqa"
)

const RequestIDHeader = "request_id"

// ErrorCode maps service errors onto micro error codes, mirroring the HTTP
// status codes.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, docqa.ErrEmptyQuestion):
		return "400"

	case errors.Is(err, docqa.ErrGenerationTimeout):
		return "504"

	default:
		return "500"
	}
}

func requestContext(r micro.Request) context.Context {
	ctx := context.Background()

	requestID := r.Headers().Get(RequestIDHeader)
	if requestID != "" {
		ctx = context.WithValue(ctx, docqa.RequestID, requestID)
	}

	return ctx
}

func AskHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req docqa.AskRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := requestContext(r)
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error(ErrorCode(err), err.Error(), nil)
			return
		}

		answer, ok := resp.(docqa.AskResponse)
		if !ok {
			r.Error("500", docqa.ErrInvalidResponse.Error(), nil)
			return
		}

		r.RespondJSON(&answer)
	}
}

func SearchHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req docqa.SearchRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := requestContext(r)
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error(ErrorCode(err), err.Error(), nil)
			return
		}

		passages, ok := resp.([]docqa.Passage)
		if !ok {
			r.Error("500", docqa.ErrInvalidResponse.Error(), nil)
			return
		}

		r.RespondJSON(&passages)
	}
}
