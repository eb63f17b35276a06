package schema

import "errors"

// Transport failures are recoverable: the session ends up Disconnected and
// the user sees a failed connection.
var (
	// ErrSpawn is returned when a local provider process could not be started.
	ErrSpawn = errors.New("inspector: spawn failed")

	// ErrHandshake is returned when a provider did not complete the protocol
	// handshake within the transport timeout.
	ErrHandshake = errors.New("inspector: handshake failed")

	// ErrUnreachable is returned when a remote stream could not be opened.
	ErrUnreachable = errors.New("inspector: server unreachable")
)

var (
	// ErrValidation is returned for malformed connection requests or messages.
	ErrValidation = errors.New("inspector: invalid request")

	// ErrNotConnected is returned when a transport is used before Connect succeeded.
	ErrNotConnected = errors.New("inspector: transport not connected")

	// ErrClosed is returned when a transport is used after Close.
	ErrClosed = errors.New("inspector: transport closed")

	// ErrSuperseded is reported for a connection attempt replaced by a newer one.
	ErrSuperseded = errors.New("inspector: connection attempt superseded")
)
