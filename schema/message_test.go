package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		expectCommand Command
		expectRequest *ConnectionRequest
		expectErr     bool
	}{
		{
			description:   "stdio connect",
			input:         `{"command":"connect","data":{"transport":"stdio","command":"./echo-server"}}`,
			expectCommand: CommandConnect,
			expectRequest: &ConnectionRequest{Transport: TransportStdio, Command: "./echo-server"},
		},
		{
			description:   "sse connect",
			input:         `{"command":"connect","data":{"transport":"sse","serverUrl":"http://localhost:4981/sse"}}`,
			expectCommand: CommandConnect,
			expectRequest: &ConnectionRequest{Transport: TransportSSE, ServerURL: "http://localhost:4981/sse"},
		},
		{description: "disconnect", input: `{"command":"disconnect"}`, expectCommand: CommandDisconnect},
		{description: "disconnect null data", input: `{"command":"disconnect","data":null}`, expectCommand: CommandDisconnect},
		{description: "disconnect with data", input: `{"command":"disconnect","data":{"x":1}}`, expectErr: true},
		{description: "unknown transport", input: `{"command":"connect","data":{"transport":"ftp","command":"x"}}`, expectErr: true},
		{description: "unknown command", input: `{"command":"reboot"}`, expectErr: true},
		{description: "outbound command", input: `{"command":"connectionStatus"}`, expectErr: true},
		{description: "connect without data", input: `{"command":"connect"}`, expectErr: true},
		{description: "unknown payload field", input: `{"command":"connect","data":{"transport":"stdio","command":"x","cwd":"/"}}`, expectErr: true},
		{description: "unknown envelope field", input: `{"command":"disconnect","panel":"a"}`, expectErr: true},
		{description: "not json", input: `connect`, expectErr: true},
	}

	for _, testCase := range testCases {
		actual, err := DecodeInbound([]byte(testCase.input))
		if testCase.expectErr {
			assert.ErrorIs(t, err, ErrValidation, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expectCommand, actual.Command, testCase.description)
		assert.Equal(t, testCase.expectRequest, actual.Request, testCase.description)
	}
}

func TestStatus_MarshalJSON(t *testing.T) {
	var testCases = []struct {
		description string
		status      *Status
		expect      string
	}{
		{
			description: "connected with tools",
			status:      NewSuccessOutcome([]ToolDescriptor{{Name: "echo", Description: "Echoes input"}}).Status(),
			expect:      `{"command":"connectionStatus","data":{"success":true,"tools":[{"name":"echo","description":"Echoes input"}]}}`,
		},
		{
			description: "connected without tools",
			status:      NewSuccessOutcome(nil).Status(),
			expect:      `{"command":"connectionStatus","data":{"success":true,"tools":[]}}`,
		},
		{
			description: "disconnected",
			status:      NewDisconnectedStatus(),
			expect:      `{"command":"connectionStatus","data":{"success":true,"disconnected":true}}`,
		},
		{
			description: "failure",
			status:      NewFailureOutcome(fmt.Errorf("%w: exit status 1", ErrSpawn)).Status(),
			expect:      `{"command":"connectionStatus","data":{"success":false,"error":"inspector: spawn failed: exit status 1"}}`,
		},
		{
			description: "superseded",
			status:      NewErrorStatus(ErrSuperseded),
			expect:      `{"command":"connectionStatus","data":{"success":false,"error":"inspector: connection attempt superseded","superseded":true}}`,
		},
	}
	for _, testCase := range testCases {
		data, err := json.Marshal(NewStatusMessage(testCase.status))
		require.NoError(t, err, testCase.description)
		assert.JSONEq(t, testCase.expect, string(data), testCase.description)

		decoded := &Outbound{}
		require.NoError(t, json.Unmarshal(data, decoded), testCase.description)
		assert.Equal(t, testCase.status.Success, decoded.Data.Success, testCase.description)
		assert.Equal(t, len(testCase.status.Tools), len(decoded.Data.Tools), testCase.description)
	}
}

func TestNewFailureOutcome(t *testing.T) {
	err := fmt.Errorf("%w: timeout", ErrHandshake)
	outcome := NewFailureOutcome(err)
	assert.False(t, outcome.Success)
	assert.Nil(t, outcome.Tools)
	assert.True(t, errors.Is(outcome.Err, ErrHandshake))
	assert.Equal(t, err.Error(), outcome.Error)
}
