package nats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/docqa"
)

// MakeEndpoints returns client endpoints for a service registered under
// prefix. Requests without a deadline give up after timeout.
func MakeEndpoints(nc *nats.Conn, prefix string, timeout time.Duration) *docqa.EndpointSet {
	if timeout <= 0 {
		timeout = nats.DefaultTimeout
	}

	return &docqa.EndpointSet{
		Ask:    AskEndpoint(nc, prefix+".ask", timeout),
		Search: SearchEndpoint(nc, prefix+".search", timeout),
	}
}

// RequestFunc sends a request message and waits for its reply.
type RequestFunc func(ctx context.Context, msg *nats.Msg) (*nats.Msg, error)

func requestMsg(ctx context.Context, send RequestFunc, topic string, data []byte, timeout time.Duration) (*nats.Msg, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	msg := nats.NewMsg(topic)
	msg.Data = data

	requestID, ok := ctx.Value(docqa.RequestID).(string)
	if ok {
		msg.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := send(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := Error(resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func AskEndpoint(nc *nats.Conn, topic string, timeout time.Duration) endpoint.Endpoint {
	return MakeAskEndpoint(nc.RequestMsgWithContext, topic, timeout)
}

func MakeAskEndpoint(send RequestFunc, topic string, timeout time.Duration) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(docqa.AskRequest)
		if !ok {
			return nil, docqa.ErrInvalidRequest
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := requestMsg(ctx, send, topic, data, timeout)
		if err != nil {
			return nil, err
		}

		var answer docqa.AskResponse
		if err := json.Unmarshal(resp.Data, &answer); err != nil {
			return nil, err
		}

		return answer, nil
	}
}

func SearchEndpoint(nc *nats.Conn, topic string, timeout time.Duration) endpoint.Endpoint {
	return MakeSearchEndpoint(nc.RequestMsgWithContext, topic, timeout)
}

func MakeSearchEndpoint(send RequestFunc, topic string, timeout time.Duration) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(docqa.SearchRequest)
		if !ok {
			return nil, docqa.ErrInvalidRequest
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		resp, err := requestMsg(ctx, send, topic, data, timeout)
		if err != nil {
			return nil, err
		}

		var passages []docqa.Passage
		if err := json.Unmarshal(resp.Data, &passages); err != nil {
			return nil, err
		}

		return passages, nil
	}
}

var knownErrors = []error{
	docqa.ErrEmptyQuestion,
	docqa.ErrGenerationTimeout,
	docqa.ErrServiceClosed,
}

// Error extracts the micro error carried by a reply, if any. Errors the
// service is known to return are mapped back onto their sentinels.
func Error(msg *nats.Msg) error {
	if msg == nil {
		return errors.New("nil message")
	}

	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}

	description := msg.Header.Get(micro.ErrorHeader)
	if description == "" {
		description = "unknown error"
	}

	for _, known := range knownErrors {
		if description == known.Error() {
			return known
		}
	}

	return errors.New(code + ":" + description)
}
