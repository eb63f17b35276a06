// Package host owns inspection panels and runs the line-oriented inspector.
package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/viant/mcp-inspector/bridge"
	"github.com/viant/mcp-inspector/internal/collection"
	"github.com/viant/mcp-inspector/session"
)

var (
	// ErrPanelNotFound is returned for an unknown panel id.
	ErrPanelNotFound = errors.New("panel not found")
	// ErrPanelDisposed is returned when a disposed panel receives a message.
	ErrPanelDisposed = errors.New("panel disposed")
)

// Registry tracks open panels by id.
type Registry struct {
	panels         *collection.SyncMap[string, *Panel]
	sessionOptions []session.Option
	logger         *slog.Logger
}

// Open creates a panel with a new identity.
func (r *Registry) Open(emit bridge.Emitter) *Panel {
	panel := r.newPanel(uuid.New().String(), emit)
	r.panels.Put(panel.ID, panel)
	return panel
}

// OpenOrReveal returns the panel registered under id, creating it when absent.
// The boolean reports whether an existing panel was revealed.
func (r *Registry) OpenOrReveal(id string, emit bridge.Emitter) (*Panel, bool) {
	return r.panels.GetOrPut(id, func() *Panel {
		return r.newPanel(id, emit)
	})
}

func (r *Registry) Lookup(id string) (*Panel, bool) {
	return r.panels.Get(id)
}

// Dispose removes the panel and releases its session.
func (r *Registry) Dispose(id string) error {
	panel, ok := r.panels.Delete(id)
	if !ok {
		return fmt.Errorf("panel %v: %w", id, ErrPanelNotFound)
	}
	return panel.Dispose()
}

// Close disposes every panel.
func (r *Registry) Close() error {
	var errs []error
	r.panels.Range(func(id string, _ *Panel) bool {
		if err := r.Dispose(id); err != nil && !errors.Is(err, ErrPanelNotFound) {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

func (r *Registry) Len() int {
	return r.panels.Len()
}

func (r *Registry) newPanel(id string, emit bridge.Emitter) *Panel {
	r.logger.Debug("opening panel", "panel", id)
	return newPanel(id, emit, r.logger, r.sessionOptions...)
}

func NewRegistry(options ...Option) *Registry {
	ret := &Registry{panels: collection.NewSyncMap[string, *Panel]()}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	return ret
}
