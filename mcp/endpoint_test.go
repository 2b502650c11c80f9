package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/flarexio/docqa"
)

type stubService struct {
	answer   string
	passages []docqa.Passage
	err      error

	question string
	query    string
	k        []int
}

func (svc *stubService) Close() error {
	return nil
}

func (svc *stubService) Ask(ctx context.Context, question string) (string, error) {
	svc.question = question
	if question == "" {
		return "", docqa.ErrEmptyQuestion
	}

	return svc.answer, svc.err
}

func (svc *stubService) Search(ctx context.Context, query string, k ...int) ([]docqa.Passage, error) {
	svc.query = query
	svc.k = k
	return svc.passages, svc.err
}

func decodeRequest(t *testing.T, input string) JSONRPCRequest {
	var req JSONRPCRequest
	if err := json.Unmarshal([]byte(input), &req); err != nil {
		t.Fatal(err)
	}

	return req
}

func TestUnmarshalInitializeRequest(t *testing.T) {
	assert := assert.New(t)

	input := []byte(`{
	  "jsonrpc": "2.0",
	  "id": 1,
	  "method": "initialize",
	  "params": {
	    "protocolVersion": "2024-11-05",
	    "capabilities": {
	      "roots": {
	        "listChanged": true
	      },
	      "sampling": {}
	    },
	    "clientInfo": {
	      "name": "ExampleClient",
	      "version": "1.0.0"
	    }
	  }
	}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	var params mcp.InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(mcp.JSONRPC_VERSION, req.JSONRPC)
	assert.Equal(mcp.NewRequestId(int64(1)), req.ID)
	assert.Equal(mcp.MethodInitialize, req.Method)
	assert.Equal("2024-11-05", params.ProtocolVersion)
}

func TestInitializeEndpoint(t *testing.T) {
	assert := assert.New(t)

	req := decodeRequest(t, `{
	  "jsonrpc": "2.0",
	  "id": 1,
	  "method": "initialize",
	  "params": {"protocolVersion": "2024-11-05", "clientInfo": {"name": "c", "version": "1"}}
	}`)

	msg := InitializeEndpoint(&stubService{})(context.Background(), req)

	resp, ok := msg.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	result, ok := resp.Result.(*mcp.InitializeResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.Equal("docqa", result.ServerInfo.Name)
	assert.Equal("2024-11-05", result.ProtocolVersion)
	assert.NotNil(result.Capabilities.Tools)
}

func TestListToolsEndpoint(t *testing.T) {
	assert := assert.New(t)

	req := decodeRequest(t, `{"jsonrpc": "2.0", "id": 2, "method": "tools/list"}`)

	msg := ListToolsEndpoint(&stubService{})(context.Background(), req)

	resp, ok := msg.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	result, ok := resp.Result.(*mcp.ListToolsResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}

	assert.Equal([]string{ToolAskDocument, ToolSearchDocument}, names)
	assert.Contains(result.Tools[0].InputSchema.Required, "question")
}

func TestCallToolAskDocument(t *testing.T) {
	assert := assert.New(t)

	svc := &stubService{answer: "Well-drained loamy soil."}

	req := decodeRequest(t, `{
	  "jsonrpc": "2.0",
	  "id": 3,
	  "method": "tools/call",
	  "params": {
	    "name": "ask_document",
	    "arguments": {"question": "What soil does wheat need?"}
	  }
	}`)

	msg := CallToolEndpoint(svc)(context.Background(), req)

	resp, ok := msg.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	result, ok := resp.Result.(*mcp.CallToolResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.Equal("What soil does wheat need?", svc.question)
	assert.False(result.IsError)
	assert.Len(result.Content, 1)

	content, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		assert.Fail("invalid content type")
		return
	}

	assert.Equal("Well-drained loamy soil.", content.Text)
}

func TestCallToolAskDocumentServiceError(t *testing.T) {
	assert := assert.New(t)

	req := decodeRequest(t, `{
	  "jsonrpc": "2.0",
	  "id": 4,
	  "method": "tools/call",
	  "params": {"name": "ask_document"}
	}`)

	msg := CallToolEndpoint(&stubService{})(context.Background(), req)

	resp, ok := msg.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	result, ok := resp.Result.(*mcp.CallToolResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.True(result.IsError)

	content, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		assert.Fail("invalid content type")
		return
	}

	assert.Equal(docqa.ErrEmptyQuestion.Error(), content.Text)
}

func TestCallToolSearchDocument(t *testing.T) {
	assert := assert.New(t)

	svc := &stubService{
		passages: []docqa.Passage{
			{Index: 7, Text: "Loamy soil drains well.", Score: 0.8},
		},
	}

	req := decodeRequest(t, `{
	  "jsonrpc": "2.0",
	  "id": 5,
	  "method": "tools/call",
	  "params": {
	    "name": "search_document",
	    "arguments": {"query": "loam", "k": 2}
	  }
	}`)

	msg := CallToolEndpoint(svc)(context.Background(), req)

	resp, ok := msg.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	result, ok := resp.Result.(*mcp.CallToolResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.Equal("loam", svc.query)
	assert.Equal([]int{2}, svc.k)

	content, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		assert.Fail("invalid content type")
		return
	}

	var passages []docqa.Passage
	if err := json.Unmarshal([]byte(content.Text), &passages); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(svc.passages, passages)

	req = decodeRequest(t, `{
	  "jsonrpc": "2.0",
	  "id": 6,
	  "method": "tools/call",
	  "params": {"name": "search_document", "arguments": {"query": "loam"}}
	}`)

	CallToolEndpoint(svc)(context.Background(), req)
	assert.Empty(svc.k, "omitted k uses the server default")
}

func TestCallToolUnknown(t *testing.T) {
	assert := assert.New(t)

	req := decodeRequest(t, `{
	  "jsonrpc": "2.0",
	  "id": 7,
	  "method": "tools/call",
	  "params": {"name": "get_weather", "arguments": {"location": "Taipei"}}
	}`)

	msg := CallToolEndpoint(&stubService{})(context.Background(), req)

	resp, ok := msg.(mcp.JSONRPCError)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	assert.Equal(mcp.INVALID_PARAMS, resp.Error.Code)
	assert.Contains(resp.Error.Message, "get_weather")
}

func TestMakeEndpoints(t *testing.T) {
	assert := assert.New(t)

	endpoints := MakeEndpoints(&stubService{})

	for _, method := range []mcp.MCPMethod{
		mcp.MethodInitialize,
		mcp.MethodPing,
		mcp.MethodToolsList,
		mcp.MethodToolsCall,
	} {
		assert.Contains(endpoints, method)
	}
}
