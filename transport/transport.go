// Package transport connects to a tool provider and discovers its tools.
//
// Two variants implement Client: Process spawns a local provider and speaks
// newline-delimited JSON-RPC over its stdin/stdout, Stream opens a
// server-sent events channel to a remote provider.
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/mcp-inspector/client"
	"github.com/viant/mcp-inspector/schema"
)

// Client is a connection to a single tool provider.
type Client interface {
	// Connect establishes the channel and performs the protocol handshake.
	Connect(ctx context.Context) error
	// ListTools returns the advertised tools in provider order.
	ListTools(ctx context.Context) ([]schema.ToolDescriptor, error)
	// Close releases the process or stream; it is idempotent.
	Close() error
}

// Factory creates a Client for a connection request.
type Factory func(request *schema.ConnectionRequest, options ...Option) (Client, error)

// New creates a Client for the request's transport kind.
func New(request *schema.ConnectionRequest, options ...Option) (Client, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	opts := NewOptions(options...)
	switch request.Transport {
	case schema.TransportStdio:
		return NewProcess(request, opts), nil
	case schema.TransportSSE:
		return NewStream(request, opts), nil
	}
	return nil, fmt.Errorf("%w: unsupported transport %q", schema.ErrValidation, request.Transport)
}

// listTools runs discovery under timeout; a provider that stops answering
// mid-discovery fails the handshake.
func listTools(ctx context.Context, aClient *client.Client, timeout time.Duration, target string) ([]schema.ToolDescriptor, error) {
	listCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	tools, err := aClient.ListAllTools(listCtx)
	if err != nil && ctx.Err() == nil && listCtx.Err() != nil {
		return nil, fmt.Errorf("%w: %s: tools/list timed out after %s: %w", schema.ErrHandshake, target, timeout, err)
	}
	return tools, err
}
