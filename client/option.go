package client

import (
	"log/slog"

	"github.com/viant/mcp-protocol/schema"
)

const defaultMaxPages = 100

// Option represents option
type Option func(c *Client)

// WithCapabilities set capabilites
func WithCapabilities(capabilities schema.ClientCapabilities) Option {
	return func(c *Client) {
		c.capabilities = capabilities
	}
}

func WithProtocolVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.protocolVersion = version
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxPages bounds tools/list pagination, 0 disables the bound
func WithMaxPages(pages int) Option {
	return func(c *Client) {
		c.maxPages = pages
	}
}
