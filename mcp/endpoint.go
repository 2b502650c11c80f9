package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/docqa"
)

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      mcp.RequestId   `json:"id"`
	Method  mcp.MCPMethod   `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// ErrorResponse builds a JSON-RPC error reply for the request id.
func ErrorResponse(id mcp.RequestId, code int, message string) mcp.JSONRPCError {
	return mcp.JSONRPCError{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Error: struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    any    `json:"data,omitempty"`
		}{
			Code:    code,
			Message: message,
		},
	}
}

type MCPEndpoint func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage

const MCPSERVER_INSTRUCTIONS string = `DocQA answers questions about a single PDF document that was indexed at startup.

Available tools:
- ask_document: Answer a natural-language question using only the document
- search_document: Return the passages of the document closest to a query

Answers never draw on knowledge outside the document. Use search_document to inspect the supporting passages.`

const (
	ToolAskDocument    = "ask_document"
	ToolSearchDocument = "search_document"
)

var Tools = []mcp.Tool{
	mcp.NewTool(ToolAskDocument,
		mcp.WithDescription("Answer a question using only the content of the indexed document."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	),
	mcp.NewTool(ToolSearchDocument,
		mcp.WithDescription("Retrieve the passages of the indexed document most similar to a query, best first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		mcp.WithNumber("k",
			mcp.Description("Number of passages to return; the server default when omitted"),
		),
	),
}

func InitializeEndpoint(svc docqa.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.InitializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		protocolVersion := mcp.LATEST_PROTOCOL_VERSION
		if clientVersion := params.ProtocolVersion; clientVersion != "" {
			if slices.Contains(mcp.ValidProtocolVersions, clientVersion) {
				protocolVersion = clientVersion
			}
		}

		result := &mcp.InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: mcp.ServerCapabilities{
				Tools: &struct {
					ListChanged bool `json:"listChanged,omitempty"`
				}{},
			},
			ServerInfo: mcp.Implementation{
				Name:    "docqa",
				Version: "1.0.0",
			},
			Instructions: MCPSERVER_INSTRUCTIONS,
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func PingEndpoint(svc docqa.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  struct{}{}, // empty response
		}
	}
}

func ListToolsEndpoint(svc docqa.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		result := &mcp.ListToolsResult{
			Tools: Tools,
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type askArguments struct {
	Question string `json:"question"`
}

type searchArguments struct {
	Query string `json:"query"`
	K     *int   `json:"k,omitempty"`
}

// CallToolEndpoint runs a document tool. Service failures come back as tool
// results flagged IsError; malformed calls as JSON-RPC errors.
func CallToolEndpoint(svc docqa.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params callToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		arguments := params.Arguments
		if len(arguments) == 0 || string(arguments) == "null" {
			arguments = json.RawMessage(`{}`)
		}

		var result *mcp.CallToolResult

		switch params.Name {
		case ToolAskDocument:
			var args askArguments
			if err := json.Unmarshal(arguments, &args); err != nil {
				return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
			}

			answer, err := svc.Ask(ctx, args.Question)
			if err != nil {
				result = mcp.NewToolResultError(err.Error())
				break
			}

			result = mcp.NewToolResultText(answer)

		case ToolSearchDocument:
			var args searchArguments
			if err := json.Unmarshal(arguments, &args); err != nil {
				return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
			}

			var k []int
			if args.K != nil {
				k = append(k, *args.K)
			}

			passages, err := svc.Search(ctx, args.Query, k...)
			if err != nil {
				result = mcp.NewToolResultError(err.Error())
				break
			}

			bs, err := json.Marshal(passages)
			if err != nil {
				return ErrorResponse(req.ID, mcp.INTERNAL_ERROR, err.Error())
			}

			result = mcp.NewToolResultText(string(bs))

		default:
			msg := fmt.Sprintf("tool not found: %s", params.Name)
			return ErrorResponse(req.ID, mcp.INVALID_PARAMS, msg)
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

// MakeEndpoints returns the MCP methods served over streamable HTTP.
func MakeEndpoints(svc docqa.Service) map[mcp.MCPMethod]MCPEndpoint {
	endpoints := make(map[mcp.MCPMethod]MCPEndpoint)
	endpoints[mcp.MethodInitialize] = InitializeEndpoint(svc)
	endpoints[mcp.MethodPing] = PingEndpoint(svc)
	endpoints[mcp.MethodToolsList] = ListToolsEndpoint(svc)
	endpoints[mcp.MethodToolsCall] = CallToolEndpoint(svc)
	return endpoints
}
