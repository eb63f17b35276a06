// Package provider implements a fake MCP tool provider served over the
// viant/jsonrpc stdio and SSE server transports.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/jsonrpc/transport/server/http/sse"
	"github.com/viant/jsonrpc/transport/server/stdio"
	"github.com/viant/mcp-protocol/schema"
)

// Provider is a minimal MCP tool provider: it answers initialize, tools/list and ping.
type Provider struct {
	info           schema.Implementation
	tools          []string
	pageSize       int
	handshakeDelay time.Duration
	listDelay      time.Duration
	logger         *slog.Logger
}

// NewHandler creates a per-connection JSON-RPC handler.
func (p *Provider) NewHandler(_ context.Context, _ transport.Transport) transport.Handler {
	return &handler{provider: p}
}

// Stdio returns a server reading requests from stdin and writing responses to stdout.
func (p *Provider) Stdio(ctx context.Context) *stdio.Server {
	return stdio.New(ctx, p.NewHandler)
}

// HTTP returns an SSE handler serving /sse and /message.
func (p *Provider) HTTP() http.Handler {
	return sse.New(p.NewHandler,
		sse.WithURI("/sse"),
		sse.WithMessageURI("/message"),
	)
}

// Tools returns the advertised tool names in listing order.
func (p *Provider) Tools() []string {
	return append([]string(nil), p.tools...)
}

// EchoInput is the argument shape advertised for every provider tool.
type EchoInput struct {
	Text   string     `json:"text" description:"text to echo back"`
	Repeat *int       `json:"repeat,omitempty" description:"number of repetitions"`
	Tags   []string   `json:"tags,omitempty"`
	At     *time.Time `json:"at,omitempty"`
}

func (p *Provider) listTools(cursor string) (*schema.ListToolsResult, error) {
	offset := 0
	if cursor != "" {
		if _, err := fmt.Sscanf(cursor, "page-%d", &offset); err != nil || offset < 0 || offset > len(p.tools) {
			return nil, fmt.Errorf("invalid cursor %q", cursor)
		}
	}
	end := len(p.tools)
	if p.pageSize > 0 && offset+p.pageSize < end {
		end = offset + p.pageSize
	}
	inputSchema := schema.ToolInputSchema{}
	if err := inputSchema.Load(&EchoInput{}); err != nil {
		return nil, err
	}
	description := "echoes its text argument"
	result := &schema.ListToolsResult{Tools: []schema.Tool{}}
	for _, name := range p.tools[offset:end] {
		result.Tools = append(result.Tools, schema.Tool{Name: name, Description: &description, InputSchema: inputSchema})
	}
	if end < len(p.tools) {
		next := fmt.Sprintf("page-%d", end)
		result.NextCursor = &next
	}
	return result, nil
}

type handler struct {
	provider *Provider
}

func (h *handler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = request.Jsonrpc
	var result any
	switch request.Method {
	case schema.MethodInitialize:
		if delay := h.provider.handshakeDelay; delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				response.Error = jsonrpc.NewInternalError(ctx.Err().Error(), nil)
				return
			}
		}
		result = &schema.InitializeResult{
			ProtocolVersion: schema.LatestProtocolVersion,
			ServerInfo:      h.provider.info,
			Capabilities:    schema.ServerCapabilities{Tools: &schema.ServerCapabilitiesTools{}},
		}
	case schema.MethodToolsList:
		params := &schema.ListToolsRequestParams{}
		if len(request.Params) > 0 {
			if err := json.Unmarshal(request.Params, params); err != nil {
				response.Error = jsonrpc.NewInvalidParamsError(err.Error(), request.Params)
				return
			}
		}
		cursor := ""
		if params.Cursor != nil {
			cursor = *params.Cursor
		}
		if delay := h.provider.listDelay; delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				response.Error = jsonrpc.NewInternalError(ctx.Err().Error(), nil)
				return
			}
		}
		listing, err := h.provider.listTools(cursor)
		if err != nil {
			response.Error = jsonrpc.NewInvalidParamsError(err.Error(), nil)
			return
		}
		result = listing
	case schema.MethodPing:
		result = &schema.PingResult{}
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method %s not found", request.Method), nil)
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		response.Error = jsonrpc.NewInternalError(err.Error(), nil)
		return
	}
	response.Result = data
}

func (h *handler) OnNotification(_ context.Context, notification *jsonrpc.Notification) {
	h.provider.logger.Debug("notification received", "method", notification.Method)
}

// New creates a provider, by default named "echo-server" advertising a single "echo" tool.
func New(options ...Option) *Provider {
	ret := &Provider{
		info:  *schema.NewImplementation("echo-server", "0.1.0"),
		tools: []string{"echo"},
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
