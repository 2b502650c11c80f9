package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
)

var (
	ErrEndpointExists = errors.New("endpoint already exists")
	ErrMethodNotFound = errors.New("method not found")
)

type StdioServer interface {
	AddEndpoint(method mcp.MCPMethod, endpoint MCPEndpoint) error
	Listen(ctx context.Context) error
}

// NewStdioServer serves newline-delimited JSON-RPC requests read from in and
// writes one response line per request to out.
func NewStdioServer(in io.Reader, out io.Writer) StdioServer {
	return &stdioServer{
		in:        in,
		out:       out,
		endpoints: make(map[mcp.MCPMethod]MCPEndpoint),
	}
}

type stdioServer struct {
	in        io.Reader
	out       io.Writer
	endpoints map[mcp.MCPMethod]MCPEndpoint
}

func (s *stdioServer) AddEndpoint(method mcp.MCPMethod, endpoint MCPEndpoint) error {
	_, ok := s.endpoints[method]
	if ok {
		return ErrEndpointExists
	}

	s.endpoints[method] = endpoint
	return nil
}

// AddEndpoints registers every endpoint and stops at the first method that
// is already served.
func AddEndpoints(s StdioServer, endpoints map[mcp.MCPMethod]MCPEndpoint) error {
	for method, endpoint := range endpoints {
		if err := s.AddEndpoint(method, endpoint); err != nil {
			return fmt.Errorf("add endpoint %s: %w", method, err)
		}
	}

	return nil
}

func (s *stdioServer) Listen(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)

	lines := make(chan string)
	errs := make(chan error, 1)

	go func(ctx context.Context, lines chan<- string, errs chan<- error) {
		defer close(lines)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			errs <- err
		}
	}(ctx, lines, errs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-errs:
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}

			if line == "" {
				continue
			}

			var req JSONRPCRequest
			if err := json.Unmarshal([]byte(line), &req); err != nil {
				continue
			}

			// Notifications carry no ID and expect no response.
			if req.ID.IsNil() {
				continue
			}

			var resp mcp.JSONRPCMessage

			endpoint, ok := s.endpoints[req.Method]
			if ok {
				resp = endpoint(ctx, req)
			} else {
				resp = ErrorResponse(req.ID, mcp.METHOD_NOT_FOUND, ErrMethodNotFound.Error())
			}

			bs, err := json.Marshal(resp)
			if err != nil {
				continue
			}

			if _, err := fmt.Fprintf(s.out, "%s\n", bs); err != nil {
				return err
			}
		}
	}
}
