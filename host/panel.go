package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/mcp-inspector/bridge"
	"github.com/viant/mcp-inspector/session"
)

// Panel is one inspection surface with its own session.
type Panel struct {
	ID         string
	controller *session.Controller
	bridge     *bridge.Bridge
	logger     *slog.Logger

	mux      sync.RWMutex
	disposed bool
}

// Handle processes one inbound panel message.
func (p *Panel) Handle(ctx context.Context, data []byte) error {
	p.mux.RLock()
	defer p.mux.RUnlock()
	if p.disposed {
		return fmt.Errorf("panel %v: %w", p.ID, ErrPanelDisposed)
	}
	return p.bridge.Handle(ctx, data)
}

// Wait blocks until in-flight connection attempts have reported.
func (p *Panel) Wait() {
	p.bridge.Wait()
}

// State returns the panel's session state.
func (p *Panel) State() session.State {
	return p.controller.State()
}

// Dispose closes the session, then waits for pending attempts to report.
func (p *Panel) Dispose() error {
	p.mux.Lock()
	if p.disposed {
		p.mux.Unlock()
		return nil
	}
	p.disposed = true
	p.mux.Unlock()

	err := p.controller.Close()
	p.bridge.Wait()
	p.logger.Info("panel disposed")
	return err
}

func newPanel(id string, emit bridge.Emitter, logger *slog.Logger, options ...session.Option) *Panel {
	logger = logger.With("panel", id)
	controller := session.New(append([]session.Option{session.WithLogger(logger)}, options...)...)
	return &Panel{
		ID:         id,
		controller: controller,
		bridge:     bridge.New(controller, emit, bridge.WithLogger(logger)),
		logger:     logger,
	}
}
