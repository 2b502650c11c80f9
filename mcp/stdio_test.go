package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestStdioServer(t *testing.T) {
	assert := assert.New(t)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"ask_document","arguments":{"question":"What soil?"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
	}, "\n")

	var out bytes.Buffer

	s := NewStdioServer(strings.NewReader(input), &out)

	endpoints := MakeEndpoints(&stubService{answer: "Loamy soil."})
	if err := AddEndpoints(s, endpoints); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.ErrorIs(s.AddEndpoint(mcp.MethodPing, nil), ErrEndpointExists)

	err := s.Listen(context.Background())
	assert.NoError(err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if !assert.Len(lines, 3) {
		return
	}

	var ping struct {
		ID     int            `json:"id"`
		Result map[string]any `json:"result"`
	}

	if err := json.Unmarshal([]byte(lines[0]), &ping); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(1, ping.ID)
	assert.Empty(ping.Result)

	assert.Contains(lines[1], "Loamy soil.")

	var notFound struct {
		ID    int `json:"id"`
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal([]byte(lines[2]), &notFound); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(3, notFound.ID)
	assert.Equal(mcp.METHOD_NOT_FOUND, notFound.Error.Code)
}

func TestAddEndpointsDuplicate(t *testing.T) {
	assert := assert.New(t)

	s := NewStdioServer(strings.NewReader(""), &bytes.Buffer{})

	err := s.AddEndpoint(mcp.MethodToolsCall, PingEndpoint(&stubService{}))
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	err = AddEndpoints(s, MakeEndpoints(&stubService{}))
	assert.ErrorIs(err, ErrEndpointExists)
	assert.Contains(err.Error(), string(mcp.MethodToolsCall))
}
