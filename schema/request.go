package schema

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ConnectionRequest selects a transport and its target.
// Exactly one variant is populated: Command (and optional Arguments) for
// stdio, ServerURL for sse.
type ConnectionRequest struct {
	Transport TransportKind `json:"transport" yaml:"transport"`
	Command   string        `json:"command,omitempty" yaml:"command,omitempty"`
	Arguments string        `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	ServerURL string        `json:"serverUrl,omitempty" yaml:"serverUrl,omitempty"`
}

// NewStdioRequest creates a local-process connection request.
func NewStdioRequest(command string, arguments ...string) *ConnectionRequest {
	return &ConnectionRequest{Transport: TransportStdio, Command: command, Arguments: strings.Join(arguments, " ")}
}

// NewSSERequest creates a stream connection request.
func NewSSERequest(serverURL string) *ConnectionRequest {
	return &ConnectionRequest{Transport: TransportSSE, ServerURL: serverURL}
}

// Validate checks the discriminant and the populated variant.
func (r *ConnectionRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: missing connection request", ErrValidation)
	}
	switch r.Transport {
	case TransportStdio:
		if strings.TrimSpace(r.Command) == "" {
			return fmt.Errorf("%w: command is required for stdio transport", ErrValidation)
		}
		if r.ServerURL != "" {
			return fmt.Errorf("%w: serverUrl is not allowed for stdio transport", ErrValidation)
		}
	case TransportSSE:
		if r.Command != "" || r.Arguments != "" {
			return fmt.Errorf("%w: command is not allowed for sse transport", ErrValidation)
		}
		if err := validateServerURL(r.ServerURL); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("%w: transport is required", ErrValidation)
	default:
		return fmt.Errorf("%w: unsupported transport %q", ErrValidation, r.Transport)
	}
	return nil
}

func validateServerURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: serverUrl is required for sse transport", ErrValidation)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: malformed serverUrl: %v", ErrValidation, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: serverUrl scheme must be http or https, got %q", ErrValidation, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: serverUrl %q has no host", ErrValidation, rawURL)
	}
	return nil
}

// Target returns the command line or URL of the populated variant.
func (r *ConnectionRequest) Target() string {
	if r.Transport == TransportSSE {
		return r.ServerURL
	}
	if r.Arguments == "" {
		return r.Command
	}
	return r.Command + " " + r.Arguments
}

// Argv returns the executable followed by its arguments.
// A command with embedded arguments is split on whitespace unless it names an existing file.
func (r *ConnectionRequest) Argv() []string {
	command := strings.TrimSpace(r.Command)
	var argv []string
	if _, err := os.Stat(command); err == nil || r.Arguments != "" {
		argv = []string{command}
	} else {
		argv = strings.Fields(command)
	}
	return append(argv, strings.Fields(r.Arguments)...)
}
