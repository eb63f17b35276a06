package transport

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/mcp-inspector/schema"
)

// closedPortURL returns an SSE URL on a port nothing listens on.
func closedPortURL(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return fmt.Sprintf("http://%s/sse", addr)
}

func TestStream_Unreachable(t *testing.T) {
	stream := NewStream(schema.NewSSERequest(closedPortURL(t)), NewOptions(WithHandshakeTimeout(2*time.Second)))

	err := stream.Connect(context.Background())
	assert.ErrorIs(t, err, schema.ErrUnreachable)
	assert.NotEmpty(t, err.Error())

	stream.mux.Lock()
	assert.True(t, stream.closed)
	assert.False(t, stream.connected)
	stream.mux.Unlock()

	_, err = stream.ListTools(context.Background())
	assert.ErrorIs(t, err, schema.ErrNotConnected)
	assert.NoError(t, stream.Close())
}

func TestStream_CloseBeforeConnect(t *testing.T) {
	stream := NewStream(schema.NewSSERequest(closedPortURL(t)), NewOptions())
	require.NoError(t, stream.Close())

	err := stream.Connect(context.Background())
	assert.ErrorIs(t, err, schema.ErrUnreachable)
	assert.ErrorIs(t, err, schema.ErrClosed)
}

func TestStream_NotConnected(t *testing.T) {
	stream := NewStream(schema.NewSSERequest("http://127.0.0.1:1/sse"), nil)
	_, err := stream.ListTools(context.Background())
	assert.ErrorIs(t, err, schema.ErrNotConnected)
}
