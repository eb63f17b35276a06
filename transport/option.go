package transport

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	defaultHandshakeTimeout = 30 * time.Second
	defaultCloseTimeout     = 2 * time.Second
	defaultClientName       = "mcp-inspector"
	defaultClientVersion    = "0.1.0"
)

// Options configures transport clients.
type Options struct {
	HandshakeTimeout time.Duration
	CloseTimeout     time.Duration
	ClientName       string
	ClientVersion    string
	ProtocolVersion  string
	Logger           *slog.Logger
	HTTPClient       *http.Client
}

// Option represents option
type Option func(o *Options)

// WithHandshakeTimeout bounds opening the channel, the initialize exchange and tool discovery.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.HandshakeTimeout = timeout
		}
	}
}

// WithCloseTimeout sets how long Close waits for a process after each shutdown step.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.CloseTimeout = timeout
		}
	}
}

// WithClientInfo sets the implementation advertised during initialize.
func WithClientInfo(name, version string) Option {
	return func(o *Options) {
		if name != "" {
			o.ClientName = name
		}
		if version != "" {
			o.ClientVersion = version
		}
	}
}

func WithProtocolVersion(version string) Option {
	return func(o *Options) {
		o.ProtocolVersion = version
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithHTTPClient sets the HTTP client used by the stream transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// NewOptions applies options over the defaults.
func NewOptions(options ...Option) *Options {
	ret := &Options{
		HandshakeTimeout: defaultHandshakeTimeout,
		CloseTimeout:     defaultCloseTimeout,
		ClientName:       defaultClientName,
		ClientVersion:    defaultClientVersion,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.Logger == nil {
		ret.Logger = slog.Default()
	}
	return ret
}

// httpClient returns the configured client or one owning its connection pool.
func (o *Options) httpClient() (*http.Client, *http.Transport) {
	if o.HTTPClient != nil {
		return o.HTTPClient, nil
	}
	roundTripper := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: o.HandshakeTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   o.HandshakeTimeout,
		ResponseHeaderTimeout: o.HandshakeTimeout,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Transport: roundTripper}, roundTripper
}
