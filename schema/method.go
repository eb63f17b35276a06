package schema

// Command identifies a message exchanged between a panel and its bridge.
type Command string

const (
	CommandConnect          Command = "connect"
	CommandDisconnect       Command = "disconnect"
	CommandConnectionStatus Command = "connectionStatus"
)

// InboundCommands returns every command a panel may send.
func InboundCommands() []Command {
	return []Command{CommandConnect, CommandDisconnect}
}

// IsInbound reports whether c is accepted from a panel.
func (c Command) IsInbound() bool {
	for _, candidate := range InboundCommands() {
		if c == candidate {
			return true
		}
	}
	return false
}

// TransportKind discriminates ConnectionRequest variants.
type TransportKind string

const (
	// TransportStdio spawns a local process and talks over its stdin/stdout.
	TransportStdio TransportKind = "stdio"
	// TransportSSE opens a server-sent events stream to a remote server.
	TransportSSE TransportKind = "sse"
)

// IsValid reports whether k is a known transport kind.
func (k TransportKind) IsValid() bool {
	switch k {
	case TransportStdio, TransportSSE:
		return true
	}
	return false
}
