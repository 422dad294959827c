// Package mcp serves the messwatch reports as Model Context Protocol tools
// over a line-delimited JSON-RPC 2.0 stdio stream.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/messwatch/internal/report"
)

// Reporter produces report envelopes.
type Reporter interface {
	Daily(ctx context.Context, date string) (*report.Envelope, error)
	Weekly(ctx context.Context, date string) (*report.Envelope, error)
	Historical(ctx context.Context, start, end, analysisType string) (*report.Envelope, error)
}

// Options configures a Server.
type Options struct {
	Version string
	Log     logrus.FieldLogger

	// Now stamps error envelopes; time.Now when nil.
	Now func() time.Time
}

// Server is an MCP stdio server. It reads JSON-RPC requests from r and
// writes JSON-RPC responses to w. Calls are dispatched to registered tools.
type Server struct {
	tools   []toolDef
	reports Reporter
	opts    Options
}

// toolDef describes a registered MCP tool.
type toolDef struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     toolHandler
}

// toolHandler is the function signature for MCP tool handlers.
type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

// failedResult is a tool failure that still carries a JSON payload.
type failedResult struct {
	payload any
	msg     string
}

func (f *failedResult) Error() string { return f.msg }

const protocolVersion = "2024-11-05"

type jsonrpcRequest struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Result  any              `json:"result,omitempty"`
	Error   *jsonrpcError    `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolsCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// toolsCallResult wraps a tool result as an MCP content response.
type toolsCallResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolListEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// NewServer constructs a Server whose tools are answered by reports.
func NewServer(reports Reporter, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{reports: reports, opts: opts}
	addTools(s)
	return s
}

func (s *Server) registerTool(def toolDef) {
	s.tools = append(s.tools, def)
}

// Run blocks, reading JSON-RPC 2.0 messages from r and writing responses to w,
// until ctx is cancelled or r returns EOF. Returns nil on clean shutdown,
// or a non-nil error for unexpected I/O failures.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)

	lineCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		for scanner.Scan() {
			select {
			case lineCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- err
		}
		close(lineCh)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case line, ok := <-lineCh:
			if !ok {
				// The reader queues its error before closing lineCh.
				select {
				case err := <-errCh:
					return err
				default:
					return nil
				}
			}
			if err := s.handleLine(ctx, line, bw); err != nil {
				return err
			}
		}
	}
}

// handleLine decodes one request and writes its response. Notifications
// (no id) get none.
func (s *Server) handleLine(ctx context.Context, line string, bw *bufio.Writer) error {
	var req jsonrpcRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return s.writeResponse(bw, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: -32700, Message: "Parse error"},
		})
	}
	if req.ID == nil {
		return nil
	}

	result, rpcErr := s.dispatch(ctx, req)
	return s.writeResponse(bw, jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr})
}

func (s *Server) dispatch(ctx context.Context, req jsonrpcRequest) (any, *jsonrpcError) {
	switch req.Method {
	case "initialize":
		return map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "messwatch", "version": s.opts.Version},
		}, nil

	case "tools/list":
		entries := make([]toolListEntry, len(s.tools))
		for i, t := range s.tools {
			entries[i] = toolListEntry{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
		}
		return map[string]any{"tools": entries}, nil

	case "tools/call":
		var params toolsCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &jsonrpcError{Code: -32602, Message: "Invalid params"}
		}
		return s.callTool(ctx, params), nil
	}
	return nil, &jsonrpcError{Code: -32601, Message: "Method not found"}
}

func (s *Server) callTool(ctx context.Context, params toolsCallParams) toolsCallResult {
	var found *toolDef
	for i := range s.tools {
		if s.tools[i].Name == params.Name {
			found = &s.tools[i]
			break
		}
	}
	if found == nil {
		return textResult(fmt.Sprintf("unknown tool: %s", params.Name), true)
	}

	args := params.Arguments
	if args == nil {
		args = json.RawMessage(`{}`)
	}

	log := s.opts.Log.WithField("tool", found.Name)
	result, err := found.Handler(ctx, args)
	if err != nil {
		log.WithError(err).Debug("tool call failed")
		var failed *failedResult
		if errors.As(err, &failed) && failed.payload != nil {
			result = failed.payload
		} else {
			return textResult(err.Error(), true)
		}
	}

	data, merr := json.Marshal(result)
	if merr != nil {
		return textResult(merr.Error(), true)
	}
	return textResult(string(data), err != nil)
}

func textResult(text string, isError bool) toolsCallResult {
	return toolsCallResult{
		Content: []mcpContent{{Type: "text", Text: text}},
		IsError: isError,
	}
}

// writeResponse writes resp as a single JSON line and flushes.
func (s *Server) writeResponse(bw *bufio.Writer, resp jsonrpcResponse) error {
	if err := json.NewEncoder(bw).Encode(resp); err != nil {
		return err
	}
	return bw.Flush()
}
