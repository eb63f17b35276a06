package provider

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/viant/mcp-protocol/schema"
)

// Environment variables configuring a provider process.
const (
	EnvServe          = "INSPECTOR_PROVIDER_SERVE"
	EnvTools          = "INSPECTOR_PROVIDER_TOOLS"
	EnvPageSize       = "INSPECTOR_PROVIDER_PAGE_SIZE"
	EnvHandshakeDelay = "INSPECTOR_PROVIDER_HANDSHAKE_DELAY"
	EnvListDelay      = "INSPECTOR_PROVIDER_LIST_DELAY"
)

type Option func(p *Provider)

// WithTools sets the advertised tool names, duplicates included.
func WithTools(names ...string) Option {
	return func(p *Provider) {
		p.tools = names
	}
}

func WithInfo(name, version string) Option {
	return func(p *Provider) {
		p.info = *schema.NewImplementation(name, version)
	}
}

// WithPageSize splits tools/list into pages of size tools.
func WithPageSize(size int) Option {
	return func(p *Provider) {
		p.pageSize = size
	}
}

// WithHandshakeDelay delays the initialize response.
func WithHandshakeDelay(delay time.Duration) Option {
	return func(p *Provider) {
		p.handshakeDelay = delay
	}
}

// WithListDelay delays every tools/list response.
func WithListDelay(delay time.Duration) Option {
	return func(p *Provider) {
		p.listDelay = delay
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// FromEnv returns options configured by INSPECTOR_PROVIDER_* variables.
func FromEnv() []Option {
	var options []Option
	if value, ok := os.LookupEnv(EnvTools); ok {
		var names []string
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		options = append(options, WithTools(names...))
	}
	if size, err := strconv.Atoi(os.Getenv(EnvPageSize)); err == nil {
		options = append(options, WithPageSize(size))
	}
	if delay, err := time.ParseDuration(os.Getenv(EnvHandshakeDelay)); err == nil {
		options = append(options, WithHandshakeDelay(delay))
	}
	if delay, err := time.ParseDuration(os.Getenv(EnvListDelay)); err == nil {
		options = append(options, WithListDelay(delay))
	}
	return options
}
