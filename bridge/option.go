package bridge

import "log/slog"

// Option represents option
type Option func(b *Bridge)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}
