package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/mcp-inspector/transport"
)

// Options configures the inspector host. Command line values take precedence
// over the config file.
type Options struct {
	ConfigURL        string        `yaml:"-" json:"-" short:"c" long:"config" description:"YAML config file URL or path"`
	Name             string        `yaml:"name,omitempty" json:"name,omitempty" short:"n" long:"name" description:"client name advertised to providers"`
	Version          string        `yaml:"version,omitempty" json:"version,omitempty" short:"v" long:"version" description:"client version advertised to providers"`
	ProtocolVersion  string        `yaml:"protocol,omitempty" json:"protocol,omitempty" short:"p" long:"protocol" description:"mcp protocol version"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout,omitempty" json:"handshakeTimeout,omitempty" long:"handshake-timeout" description:"provider handshake timeout, e.g. 30s"`
	CloseTimeout     time.Duration `yaml:"closeTimeout,omitempty" json:"closeTimeout,omitempty" long:"close-timeout" description:"grace period for each provider shutdown step, e.g. 2s"`
	LogLevel         string        `yaml:"logLevel,omitempty" json:"logLevel,omitempty" short:"l" long:"log-level" description:"log level" choice:"debug" choice:"info" choice:"warn" choice:"error"`
}

func (o *Options) Init() {
	if o.Name == "" {
		o.Name = "mcp-inspector"
	}
	if o.Version == "" {
		o.Version = "0.1.0"
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
}

// merge fills fields not set on the command line from the config file.
func (o *Options) merge(file *Options) {
	if o.Name == "" {
		o.Name = file.Name
	}
	if o.Version == "" {
		o.Version = file.Version
	}
	if o.ProtocolVersion == "" {
		o.ProtocolVersion = file.ProtocolVersion
	}
	if o.HandshakeTimeout == 0 {
		o.HandshakeTimeout = file.HandshakeTimeout
	}
	if o.CloseTimeout == 0 {
		o.CloseTimeout = file.CloseTimeout
	}
	if o.LogLevel == "" {
		o.LogLevel = file.LogLevel
	}
}

// Load merges the config file referenced by ConfigURL, if any.
func (o *Options) Load(ctx context.Context) error {
	if o.ConfigURL == "" {
		return nil
	}
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, o.ConfigURL)
	if err != nil {
		return fmt.Errorf("failed to load config %v: %w", o.ConfigURL, err)
	}
	file := &Options{}
	if err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), file); err != nil {
		return fmt.Errorf("failed to decode config %v: %w", o.ConfigURL, err)
	}
	o.merge(file)
	return nil
}

// TransportOptions returns options for every transport opened by the host.
func (o *Options) TransportOptions(logger *slog.Logger) []transport.Option {
	return []transport.Option{
		transport.WithClientInfo(o.Name, o.Version),
		transport.WithProtocolVersion(o.ProtocolVersion),
		transport.WithHandshakeTimeout(o.HandshakeTimeout),
		transport.WithCloseTimeout(o.CloseTimeout),
		transport.WithLogger(logger),
	}
}

// NewLogger creates a text logger writing to w at LogLevel.
func (o *Options) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(o.LogLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.LogLevel, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// ParseOptions parses command line arguments and merges the config file.
func ParseOptions(ctx context.Context, args []string) (*Options, error) {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return nil, err
	}
	if err := options.Load(ctx); err != nil {
		return nil, err
	}
	options.Init()
	return options, nil
}
