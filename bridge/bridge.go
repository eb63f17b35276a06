// Package bridge translates panel commands into session operations and
// session outcomes into connectionStatus messages.
//
// Every accepted command yields exactly one status: connect emits it when
// the attempt settles, disconnect emits it once teardown is done. Rejected
// input yields a single error status.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/mcp-inspector/schema"
)

// Controller is the session surface the bridge drives. Begin must claim the
// attempt's generation before it returns; the returned function completes it.
type Controller interface {
	Begin(request *schema.ConnectionRequest) (func(ctx context.Context) *schema.Outcome, error)
	Disconnect(ctx context.Context) bool
}

// Emitter delivers a message to the panel; it may be called from several goroutines.
type Emitter func(message *schema.Outbound)

type handlerFunc func(ctx context.Context, inbound *schema.Inbound) error

type Bridge struct {
	controller Controller
	emit       Emitter
	logger     *slog.Logger
	handlers   map[schema.Command]handlerFunc
	pending    sync.WaitGroup
}

// Handle decodes a raw panel message and dispatches it.
func (b *Bridge) Handle(ctx context.Context, data []byte) error {
	inbound, err := schema.DecodeInbound(data)
	if err != nil {
		return b.reject(err)
	}
	return b.Dispatch(ctx, inbound)
}

// Dispatch runs the handler registered for the inbound command.
func (b *Bridge) Dispatch(ctx context.Context, inbound *schema.Inbound) error {
	handler, ok := b.handlers[inbound.Command]
	if !ok {
		return b.reject(fmt.Errorf("%w: unsupported command %q", schema.ErrValidation, inbound.Command))
	}
	b.logger.Debug("dispatching panel command", "command", inbound.Command)
	return handler(ctx, inbound)
}

func (b *Bridge) connect(ctx context.Context, inbound *schema.Inbound) error {
	request := inbound.Request
	if request == nil {
		var err error
		if request, err = schema.DecodeConnectionRequest(inbound.Data); err != nil {
			return b.reject(err)
		}
	}
	establish, err := b.controller.Begin(request)
	if err != nil {
		b.logger.Warn("connect not started", "error", err)
		b.send(schema.NewFailureOutcome(err).Status())
		return err
	}
	ctx = context.WithoutCancel(ctx)
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		b.send(establish(ctx).Status())
	}()
	return nil
}

func (b *Bridge) disconnect(ctx context.Context, _ *schema.Inbound) error {
	if !b.controller.Disconnect(ctx) {
		b.logger.Debug("disconnect without session")
	}
	b.send(schema.NewDisconnectedStatus())
	return nil
}

func (b *Bridge) reject(err error) error {
	b.logger.Warn("rejected panel message", "error", err)
	b.send(schema.NewErrorStatus(err))
	return err
}

func (b *Bridge) send(status *schema.Status) {
	b.emit(schema.NewStatusMessage(status))
}

// Wait blocks until every dispatched connect has emitted its status.
func (b *Bridge) Wait() {
	b.pending.Wait()
}

// New creates a bridge emitting statuses through emit.
func New(controller Controller, emit Emitter, options ...Option) *Bridge {
	ret := &Bridge{controller: controller, emit: emit}
	ret.handlers = map[schema.Command]handlerFunc{
		schema.CommandConnect:    ret.connect,
		schema.CommandDisconnect: ret.disconnect,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	if ret.emit == nil {
		ret.emit = func(*schema.Outbound) {}
	}
	return ret
}
