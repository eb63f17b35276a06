package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/mcp-inspector/internal/provider"
	"github.com/viant/mcp-inspector/schema"
)

const envProviderExit = "INSPECTOR_TEST_PROVIDER_EXIT"

// TestMain lets the test binary act as a stdio provider when re-executed.
func TestMain(m *testing.M) {
	if os.Getenv(provider.EnvServe) == "1" && os.Getenv(envProviderExit) == "1" {
		os.Exit(3)
	}
	provider.ServeFromEnv()
	os.Exit(m.Run())
}

func providerRequest(t *testing.T, env map[string]string) *schema.ConnectionRequest {
	t.Helper()
	t.Setenv(provider.EnvServe, "1")
	for key, value := range env {
		t.Setenv(key, value)
	}
	return schema.NewStdioRequest(os.Args[0])
}

func TestProcess_ConnectListTools(t *testing.T) {
	var testCases = []struct {
		description string
		env         map[string]string
		expect      []string
	}{
		{
			description: "single tool",
			env:         map[string]string{provider.EnvTools: "echo"},
			expect:      []string{"echo"},
		},
		{
			description: "provider order and duplicates",
			env:         map[string]string{provider.EnvTools: "zeta,alpha,zeta"},
			expect:      []string{"zeta", "alpha", "zeta"},
		},
		{
			description: "paginated listing",
			env:         map[string]string{provider.EnvTools: "one,two,three,four,five", provider.EnvPageSize: "2"},
			expect:      []string{"one", "two", "three", "four", "five"},
		},
		{
			description: "no tools",
			env:         map[string]string{provider.EnvTools: ""},
			expect:      []string{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			request := providerRequest(t, testCase.env)
			process := NewProcess(request, NewOptions(WithHandshakeTimeout(10*time.Second)))
			defer process.Close()

			require.NoError(t, process.Connect(context.Background()))
			tools, err := process.ListTools(context.Background())
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, schema.ToolNames(tools))
			for _, tool := range tools {
				assert.Contains(t, string(tool.InputSchema), `"required":["text"]`)
			}

			require.NoError(t, process.Close())
			assert.True(t, waitFor(process.Exited(), 5*time.Second))
		})
	}
}

func TestProcess_SpawnError(t *testing.T) {
	process := NewProcess(schema.NewStdioRequest("/nonexistent/mcp-provider"), NewOptions())
	err := process.Connect(context.Background())
	assert.ErrorIs(t, err, schema.ErrSpawn)
	assert.Nil(t, process.Exited())
	assert.NoError(t, process.Close())
}

func TestProcess_HandshakeTimeout(t *testing.T) {
	request := providerRequest(t, map[string]string{provider.EnvHandshakeDelay: "1m"})
	process := NewProcess(request, NewOptions(WithHandshakeTimeout(300*time.Millisecond), WithCloseTimeout(200*time.Millisecond)))

	started := time.Now()
	err := process.Connect(context.Background())
	assert.ErrorIs(t, err, schema.ErrHandshake)
	assert.Less(t, time.Since(started), 10*time.Second)
	require.NotNil(t, process.Exited())
	assert.True(t, waitFor(process.Exited(), 5*time.Second))
}

func TestProcess_ExitBeforeHandshake(t *testing.T) {
	request := providerRequest(t, map[string]string{envProviderExit: "1"})
	process := NewProcess(request, NewOptions(WithHandshakeTimeout(10*time.Second)))

	err := process.Connect(context.Background())
	assert.ErrorIs(t, err, schema.ErrHandshake)
	assert.True(t, waitFor(process.Exited(), 5*time.Second))
}

func TestProcess_ListToolsTimeout(t *testing.T) {
	request := providerRequest(t, map[string]string{provider.EnvListDelay: "1m"})
	process := NewProcess(request, NewOptions(WithHandshakeTimeout(2*time.Second), WithCloseTimeout(200*time.Millisecond)))
	defer process.Close()

	require.NoError(t, process.Connect(context.Background()))
	started := time.Now()
	_, err := process.ListTools(context.Background())
	assert.ErrorIs(t, err, schema.ErrHandshake)
	assert.Less(t, time.Since(started), 10*time.Second)
}

func TestProcess_CloseStopsProcessGroup(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("process state is read from /proc")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh is not available")
	}
	var testCases = []struct {
		description string
		script      string
	}{
		{description: "wrapper waits for its child", script: "#!/bin/sh\nsleep 47 &\necho $! > \"$1\"\nwait\n"},
		{description: "wrapper exits leaving its child", script: "#!/bin/sh\nsleep 47 &\necho $! > \"$1\"\n"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			dir := t.TempDir()
			pidFile := filepath.Join(dir, "child.pid")
			script := filepath.Join(dir, "provider.sh")
			require.NoError(t, os.WriteFile(script, []byte(testCase.script), 0o755))
			request := &schema.ConnectionRequest{Transport: schema.TransportStdio, Command: script, Arguments: pidFile}
			process := NewProcess(request, NewOptions(WithHandshakeTimeout(300*time.Millisecond), WithCloseTimeout(200*time.Millisecond)))

			err := process.Connect(context.Background())
			assert.ErrorIs(t, err, schema.ErrHandshake)
			require.True(t, waitFor(process.Exited(), 5*time.Second))

			var pid int
			require.Eventually(t, func() bool {
				data, err := os.ReadFile(pidFile)
				if err != nil {
					return false
				}
				pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
				return err == nil
			}, 5*time.Second, 20*time.Millisecond)
			assert.Eventually(t, func() bool { return !running(pid) }, 5*time.Second, 20*time.Millisecond)
		})
	}
}

// running reports whether pid is alive and not a zombie.
func running(pid int) bool {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return false
	}
	fields := strings.Fields(string(data[bytes.LastIndexByte(data, ')')+1:]))
	return len(fields) > 0 && fields[0] != "Z"
}

func TestProcess_NotConnected(t *testing.T) {
	process := NewProcess(schema.NewStdioRequest("provider"), NewOptions())
	_, err := process.ListTools(context.Background())
	assert.ErrorIs(t, err, schema.ErrNotConnected)
}

func TestProcess_CloseBeforeConnect(t *testing.T) {
	request := providerRequest(t, nil)
	process := NewProcess(request, NewOptions())
	require.NoError(t, process.Close())
	require.NoError(t, process.Close())

	err := process.Connect(context.Background())
	assert.ErrorIs(t, err, schema.ErrSpawn)
	assert.ErrorIs(t, err, schema.ErrClosed)
	assert.Nil(t, process.Exited())
}

func TestProcess_ListToolsAfterClose(t *testing.T) {
	request := providerRequest(t, map[string]string{provider.EnvTools: "echo"})
	process := NewProcess(request, NewOptions(WithHandshakeTimeout(10*time.Second)))
	require.NoError(t, process.Connect(context.Background()))
	require.NoError(t, process.Close())

	_, err := process.ListTools(context.Background())
	assert.ErrorIs(t, err, schema.ErrNotConnected)
}

func TestNew(t *testing.T) {
	var testCases = []struct {
		description string
		request     *schema.ConnectionRequest
		expectType  any
		expectErr   error
	}{
		{description: "stdio", request: schema.NewStdioRequest("provider --verbose"), expectType: &Process{}},
		{description: "sse", request: schema.NewSSERequest("http://127.0.0.1:4981/sse"), expectType: &Stream{}},
		{description: "unknown transport", request: &schema.ConnectionRequest{Transport: "ftp"}, expectErr: schema.ErrValidation},
		{description: "missing command", request: &schema.ConnectionRequest{Transport: schema.TransportStdio}, expectErr: schema.ErrValidation},
		{description: "nil request", expectErr: schema.ErrValidation},
	}
	for _, testCase := range testCases {
		actual, err := New(testCase.request)
		if testCase.expectErr != nil {
			assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
			assert.Nil(t, actual, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.IsType(t, testCase.expectType, actual, testCase.description)
	}
}

func TestNewOptions(t *testing.T) {
	options := NewOptions(WithHandshakeTimeout(0), WithCloseTimeout(time.Second), WithClientInfo("inspector-test", ""))
	assert.Equal(t, defaultHandshakeTimeout, options.HandshakeTimeout)
	assert.Equal(t, time.Second, options.CloseTimeout)
	assert.Equal(t, "inspector-test", options.ClientName)
	assert.Equal(t, defaultClientVersion, options.ClientVersion)
	assert.NotNil(t, options.Logger)
}
