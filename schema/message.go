package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound is a command sent by a panel.
type Inbound struct {
	Command Command         `json:"command"`
	Data    json.RawMessage `json:"data,omitempty"`

	// Request is the decoded and validated payload of a connect command.
	Request *ConnectionRequest `json:"-"`
}

// Outbound is a message sent to a panel.
type Outbound struct {
	Command Command `json:"command"`
	Data    *Status `json:"data"`
}

// NewStatusMessage wraps status into a connectionStatus message.
func NewStatusMessage(status *Status) *Outbound {
	return &Outbound{Command: CommandConnectionStatus, Data: status}
}

// Status is the payload of a connectionStatus message.
type Status struct {
	Success      bool
	Tools        []ToolDescriptor
	Error        string
	Disconnected bool
	Superseded   bool
}

type statusJSON struct {
	Success      bool              `json:"success"`
	Tools        *[]ToolDescriptor `json:"tools,omitempty"`
	Error        string            `json:"error,omitempty"`
	Disconnected bool              `json:"disconnected,omitempty"`
	Superseded   bool              `json:"superseded,omitempty"`
}

// MarshalJSON emits tools for every successful connect status, even an empty listing.
func (s Status) MarshalJSON() ([]byte, error) {
	aux := statusJSON{Success: s.Success, Error: s.Error, Disconnected: s.Disconnected, Superseded: s.Superseded}
	if s.Success && !s.Disconnected {
		tools := s.Tools
		if tools == nil {
			tools = []ToolDescriptor{}
		}
		aux.Tools = &tools
	}
	return json.Marshal(aux)
}

// UnmarshalJSON decodes a connectionStatus payload.
func (s *Status) UnmarshalJSON(data []byte) error {
	aux := statusJSON{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Status{Success: aux.Success, Error: aux.Error, Disconnected: aux.Disconnected, Superseded: aux.Superseded}
	if aux.Tools != nil {
		s.Tools = *aux.Tools
	}
	return nil
}

// NewDisconnectedStatus reports a completed teardown.
func NewDisconnectedStatus() *Status {
	return &Status{Success: true, Disconnected: true}
}

// NewErrorStatus reports a rejected command or a failed operation.
func NewErrorStatus(err error) *Status {
	return &Status{Error: err.Error(), Superseded: errors.Is(err, ErrSuperseded)}
}

// Outcome is the terminal result of a connection attempt.
type Outcome struct {
	Success    bool
	Tools      []ToolDescriptor
	Error      string
	Superseded bool
	Err        error
}

// NewSuccessOutcome creates a successful outcome.
func NewSuccessOutcome(tools []ToolDescriptor) *Outcome {
	if tools == nil {
		tools = []ToolDescriptor{}
	}
	return &Outcome{Success: true, Tools: tools}
}

// NewFailureOutcome creates a failed outcome from err.
func NewFailureOutcome(err error) *Outcome {
	return &Outcome{Error: err.Error(), Err: err, Superseded: errors.Is(err, ErrSuperseded)}
}

// Status converts the outcome into a connectionStatus payload.
func (o *Outcome) Status() *Status {
	if o.Success {
		return &Status{Success: true, Tools: o.Tools}
	}
	return &Status{Error: o.Error, Superseded: o.Superseded}
}

// DecodeInbound parses and validates a panel message.
// Unknown commands, unknown payload fields and invalid connection requests are rejected.
func DecodeInbound(data []byte) (*Inbound, error) {
	ret := &Inbound{}
	if err := decodeStrict(data, ret); err != nil {
		return nil, fmt.Errorf("%w: malformed message: %v", ErrValidation, err)
	}
	if !ret.Command.IsInbound() {
		return nil, fmt.Errorf("%w: unsupported command %q", ErrValidation, ret.Command)
	}
	switch ret.Command {
	case CommandConnect:
		request, err := DecodeConnectionRequest(ret.Data)
		if err != nil {
			return nil, err
		}
		ret.Request = request
	case CommandDisconnect:
		if !isEmptyPayload(ret.Data) {
			return nil, fmt.Errorf("%w: disconnect takes no data", ErrValidation)
		}
	}
	return ret, nil
}

// DecodeConnectionRequest parses and validates a connect payload.
func DecodeConnectionRequest(data json.RawMessage) (*ConnectionRequest, error) {
	if isEmptyPayload(data) {
		return nil, fmt.Errorf("%w: connect requires data", ErrValidation)
	}
	request := &ConnectionRequest{}
	if err := decodeStrict(data, request); err != nil {
		return nil, fmt.Errorf("%w: malformed connection request: %v", ErrValidation, err)
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}
	return request, nil
}

func decodeStrict(data []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func isEmptyPayload(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
