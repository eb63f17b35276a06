// Package session owns the single provider connection of a panel.
//
// Every accepted connect and every effective disconnect advances a
// generation counter; a connection attempt only updates the session when
// its generation is still current, so a slow attempt can never overwrite
// a newer one.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/mcp-inspector/schema"
	"github.com/viant/mcp-inspector/transport"
)

type session struct {
	generation uint64
	state      State
	request    *schema.ConnectionRequest
	client     transport.Client
	tools      []schema.ToolDescriptor
}

// Controller is the only owner of the transport client.
type Controller struct {
	factory          transport.Factory
	transportOptions []transport.Option
	logger           *slog.Logger

	mux        sync.Mutex
	generation uint64
	session    *session
	closed     bool
}

// Establish runs an accepted connection attempt to completion.
type Establish = func(ctx context.Context) *schema.Outcome

// Connect replaces any existing session with a connection to request and
// reports how the attempt ended. Failed and stale attempts close their transport.
func (c *Controller) Connect(ctx context.Context, request *schema.ConnectionRequest) *schema.Outcome {
	establish, err := c.Begin(request)
	if err != nil {
		return schema.NewFailureOutcome(err)
	}
	return establish(ctx)
}

// Begin accepts a connection request: the current session is replaced by a
// Connecting one stamped with a new generation before Begin returns. The
// returned function performs the handshake and discovery. An invalid request
// leaves the current session untouched.
func (c *Controller) Begin(request *schema.ConnectionRequest) (Establish, error) {
	if err := request.Validate(); err != nil {
		c.logger.Warn("connection request rejected", "error", err)
		return nil, err
	}

	c.mux.Lock()
	if c.closed {
		c.mux.Unlock()
		return nil, fmt.Errorf("%w: session controller closed", schema.ErrClosed)
	}
	previous := c.detach()
	c.generation++
	generation := c.generation
	aClient, err := c.factory(request, c.transportOptions...)
	if err == nil {
		c.session = &session{generation: generation, state: Connecting, request: request, client: aClient}
	}
	c.mux.Unlock()
	c.release(previous, "replaced")

	logger := c.logger.With("generation", generation, "transport", request.Transport, "target", request.Target())
	if err != nil {
		logger.Warn("failed to create transport", "error", err)
		return nil, err
	}
	logger.Info("connecting")
	return func(ctx context.Context) *schema.Outcome {
		return c.settle(ctx, generation, aClient, logger)
	}, nil
}

// settle connects aClient and applies the result only while generation is current.
func (c *Controller) settle(ctx context.Context, generation uint64, aClient transport.Client, logger *slog.Logger) *schema.Outcome {
	tools, err := c.establish(ctx, aClient)

	c.mux.Lock()
	if c.generation != generation {
		current := c.generation
		c.mux.Unlock()
		_ = aClient.Close()
		logger.Info("discarding stale connection attempt", "current_generation", current, "error", err)
		return schema.NewFailureOutcome(fmt.Errorf("%w: attempt %d replaced by %d", schema.ErrSuperseded, generation, current))
	}
	if err != nil {
		c.session = nil
		c.mux.Unlock()
		_ = aClient.Close()
		logger.Warn("connection failed", "error", err)
		return schema.NewFailureOutcome(err)
	}
	c.session.state = Connected
	c.session.tools = tools
	c.mux.Unlock()
	logger.Info("connected", "tools", len(tools))
	return schema.NewSuccessOutcome(tools)
}

func (c *Controller) establish(ctx context.Context, aClient transport.Client) ([]schema.ToolDescriptor, error) {
	if err := aClient.Connect(ctx); err != nil {
		return nil, err
	}
	return aClient.ListTools(ctx)
}

// Disconnect tears down the current session. It reports false, and does
// nothing, when there is no session.
func (c *Controller) Disconnect(_ context.Context) bool {
	c.mux.Lock()
	previous := c.detach()
	if previous == nil {
		c.mux.Unlock()
		return false
	}
	c.generation++
	c.mux.Unlock()
	c.release(previous, "disconnected")
	return true
}

// Close disconnects and rejects further connection requests.
func (c *Controller) Close() error {
	c.mux.Lock()
	c.closed = true
	c.mux.Unlock()
	c.Disconnect(context.Background())
	return nil
}

// detach removes the current session; the caller must hold the lock.
func (c *Controller) detach() *session {
	previous := c.session
	c.session = nil
	return previous
}

func (c *Controller) release(previous *session, reason string) {
	if previous == nil {
		return
	}
	if err := previous.client.Close(); err != nil {
		c.logger.Warn("failed to close transport", "generation", previous.generation, "error", err)
	}
	c.logger.Info("session closed",
		"generation", previous.generation,
		"state", previous.state.String(),
		"transport", previous.request.Transport,
		"target", previous.request.Target(),
		"reason", reason)
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.session == nil {
		return Disconnected
	}
	return c.session.state
}

// Generation returns the current connection-attempt generation.
func (c *Controller) Generation() uint64 {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.generation
}

// Tools returns a copy of the connected session's tools.
func (c *Controller) Tools() []schema.ToolDescriptor {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.session == nil || c.session.state != Connected {
		return nil
	}
	return append([]schema.ToolDescriptor(nil), c.session.tools...)
}

// New creates a disconnected controller.
func New(options ...Option) *Controller {
	ret := &Controller{factory: transport.New}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
