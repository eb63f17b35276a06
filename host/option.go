package host

import (
	"log/slog"

	"github.com/viant/mcp-inspector/session"
)

// Option represents registry option
type Option func(r *Registry)

// WithSessionOptions sets options for the session of every panel.
func WithSessionOptions(options ...session.Option) Option {
	return func(r *Registry) {
		r.sessionOptions = append(r.sessionOptions, options...)
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}
