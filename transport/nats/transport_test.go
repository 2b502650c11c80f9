package nats

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/stretchr/testify/assert"

	"github.com/flarexio/docqa"
)

func TestErrorCode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("400", ErrorCode(docqa.ErrEmptyQuestion))
	assert.Equal("504", ErrorCode(fmt.Errorf("ask: %w", docqa.ErrGenerationTimeout)))
	assert.Equal("500", ErrorCode(errors.New("generate: model runner crashed")))
}

func TestError(t *testing.T) {
	assert := assert.New(t)

	assert.Error(Error(nil))

	msg := nats.NewMsg("docqa.ask")
	msg.Data = []byte(`{"answer":"loam"}`)
	assert.NoError(Error(msg))

	msg = nats.NewMsg("docqa.ask")
	msg.Header.Set(micro.ErrorCodeHeader, "504")
	msg.Header.Set(micro.ErrorHeader, docqa.ErrGenerationTimeout.Error())
	assert.ErrorIs(Error(msg), docqa.ErrGenerationTimeout)

	msg = nats.NewMsg("docqa.ask")
	msg.Header.Set(micro.ErrorCodeHeader, "400")
	msg.Header.Set(micro.ErrorHeader, docqa.ErrEmptyQuestion.Error())
	assert.ErrorIs(Error(msg), docqa.ErrEmptyQuestion)

	msg = nats.NewMsg("docqa.ask")
	msg.Header.Set(micro.ErrorCodeHeader, "500")
	msg.Header.Set(micro.ErrorHeader, "generate: model runner crashed")
	assert.EqualError(Error(msg), "500:generate: model runner crashed")

	msg = nats.NewMsg("docqa.ask")
	msg.Header.Set(micro.ErrorCodeHeader, "500")
	assert.EqualError(Error(msg), "500:unknown error")
}
