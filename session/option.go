package session

import (
	"log/slog"

	"github.com/viant/mcp-inspector/transport"
)

// Option represents option
type Option func(c *Controller)

// WithFactory replaces the transport constructor.
func WithFactory(factory transport.Factory) Option {
	return func(c *Controller) {
		c.factory = factory
	}
}

// WithTransportOptions sets options passed to every transport the controller creates.
func WithTransportOptions(options ...transport.Option) Option {
	return func(c *Controller) {
		c.transportOptions = append(c.transportOptions, options...)
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}
