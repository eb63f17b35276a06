package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	inspector "github.com/viant/mcp-inspector/schema"
)

var errUninitialized = errors.New("client is not initialized")

// Transport is the JSON-RPC channel a Client speaks over.
type Transport interface {
	Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error)
	Notify(ctx context.Context, notification *jsonrpc.Notification) error
}

// ToolsPage is a single tools/list result page.
type ToolsPage struct {
	Tools      []inspector.ToolDescriptor `json:"tools"`
	NextCursor *string                    `json:"nextCursor,omitempty"`
}

type Client struct {
	capabilities    schema.ClientCapabilities
	info            schema.Implementation
	protocolVersion string
	transport       Transport
	logger          *slog.Logger
	maxPages        int

	mux         sync.RWMutex
	initialized bool
	server      *schema.InitializeResult
}

func (c *Client) isInitialized() bool {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.initialized
}

// Server returns the initialize result of the provider, nil before Initialize.
func (c *Client) Server() *schema.InitializeResult {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.server
}

// Initialize performs the handshake: initialize request followed by the initialized notification.
func (c *Client) Initialize(ctx context.Context) (*schema.InitializeResult, error) {
	params := &schema.InitializeRequestParams{
		Capabilities:    c.capabilities,
		ClientInfo:      c.info,
		ProtocolVersion: c.protocolVersion,
	}
	result, err := call[schema.InitializeRequestParams, schema.InitializeResult](ctx, c, schema.MethodInitialize, params)
	if err != nil {
		return nil, err
	}
	if err = c.transport.Notify(ctx, &jsonrpc.Notification{Method: schema.MethodNotificationInitialized}); err != nil {
		return nil, fmt.Errorf("failed to notify initialized: %w", err)
	}
	c.mux.Lock()
	c.initialized = true
	c.server = result
	c.mux.Unlock()
	c.logger.Info("provider initialized",
		"server_name", result.ServerInfo.Name,
		"server_version", result.ServerInfo.Version,
		"protocol_version", result.ProtocolVersion)
	return result, nil
}

// ListTools returns a single tools/list page starting at cursor.
func (c *Client) ListTools(ctx context.Context, cursor *string) (*ToolsPage, error) {
	params := &schema.ListToolsRequestParams{Cursor: cursor}
	return send[schema.ListToolsRequestParams, ToolsPage](ctx, c, schema.MethodToolsList, params)
}

// ListAllTools follows nextCursor and concatenates pages in provider order.
func (c *Client) ListAllTools(ctx context.Context) ([]inspector.ToolDescriptor, error) {
	var result []inspector.ToolDescriptor
	var cursor *string
	seen := map[string]bool{}
	for page := 0; ; page++ {
		if c.maxPages > 0 && page >= c.maxPages {
			return nil, fmt.Errorf("tools/list exceeded %d pages", c.maxPages)
		}
		listing, err := c.ListTools(ctx, cursor)
		if err != nil {
			return nil, err
		}
		result = append(result, listing.Tools...)
		if listing.NextCursor == nil || *listing.NextCursor == "" {
			break
		}
		if seen[*listing.NextCursor] {
			return nil, fmt.Errorf("tools/list repeated cursor %q", *listing.NextCursor)
		}
		seen[*listing.NextCursor] = true
		cursor = listing.NextCursor
	}
	c.logger.Debug("tools discovered", "count", len(result))
	return result, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := send[schema.PingRequestParams, schema.PingResult](ctx, c, schema.MethodPing, &schema.PingRequestParams{})
	return err
}

func New(name, version string, transport Transport, options ...Option) *Client {
	ret := &Client{
		info:            *schema.NewImplementation(name, version),
		transport:       transport,
		protocolVersion: schema.LatestProtocolVersion,
		maxPages:        defaultMaxPages,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}

func send[P any, R any](ctx context.Context, client *Client, method string, parameters *P) (*R, error) {
	if !client.isInitialized() { //ensure initialized
		return nil, fmt.Errorf("%s: %w", method, errUninitialized)
	}
	return call[P, R](ctx, client, method, parameters)
}

func call[P any, R any](ctx context.Context, client *Client, method string, parameters *P) (*R, error) {
	req, err := jsonrpc.NewRequest(method, parameters)
	if err != nil {
		return nil, jsonrpc.NewInvalidRequest(err.Error(), nil)
	}
	response, err := client.transport.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if response.Error != nil {
		return nil, response.Error
	}
	var result R
	if err = json.Unmarshal(response.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return &result, nil
}
