package host

import (
	"context"
	"os"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/mcp-inspector/internal/provider"
	"github.com/viant/mcp-inspector/schema"
	"github.com/viant/mcp-inspector/session"
	"github.com/viant/mcp-inspector/transport"
)

func TestMain(m *testing.M) {
	provider.ServeFromEnv()
	os.Exit(m.Run())
}

type fakeClient struct {
	closes atomic.Int32
}

func (f *fakeClient) Connect(context.Context) error { return nil }

func (f *fakeClient) ListTools(context.Context) ([]schema.ToolDescriptor, error) {
	return []schema.ToolDescriptor{{Name: "echo"}}, nil
}

func (f *fakeClient) Close() error {
	f.closes.Add(1)
	return nil
}

func fakeRegistry(aClient *fakeClient) *Registry {
	factory := func(*schema.ConnectionRequest, ...transport.Option) (transport.Client, error) {
		return aClient, nil
	}
	return NewRegistry(WithSessionOptions(session.WithFactory(factory)))
}

func TestRegistry_Open(t *testing.T) {
	registry := NewRegistry()
	first := registry.Open(nil)
	second := registry.Open(nil)
	assert.NotEqual(t, first.ID, second.ID)
	_, err := uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, registry.Len())

	actual, ok := registry.Lookup(second.ID)
	require.True(t, ok)
	assert.Same(t, second, actual)
	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_OpenOrReveal(t *testing.T) {
	registry := NewRegistry()
	panel, revealed := registry.OpenOrReveal("inspector", nil)
	assert.False(t, revealed)
	again, revealed := registry.OpenOrReveal("inspector", nil)
	assert.True(t, revealed)
	assert.Same(t, panel, again)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_Dispose(t *testing.T) {
	aClient := &fakeClient{}
	registry := fakeRegistry(aClient)
	var statuses []*schema.Outbound
	panel := registry.Open(func(message *schema.Outbound) { statuses = append(statuses, message) })

	require.NoError(t, panel.Handle(context.Background(), []byte(`{"command":"connect","data":{"transport":"stdio","command":"provider"}}`)))
	panel.Wait()
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Data.Success)
	assert.Equal(t, session.Connected, panel.State())

	require.NoError(t, registry.Dispose(panel.ID))
	assert.Equal(t, int32(1), aClient.closes.Load())
	assert.Equal(t, session.Disconnected, panel.State())
	assert.Equal(t, 0, registry.Len())

	assert.ErrorIs(t, registry.Dispose(panel.ID), ErrPanelNotFound)
	assert.ErrorIs(t, panel.Handle(context.Background(), []byte(`{"command":"disconnect"}`)), ErrPanelDisposed)
	assert.NoError(t, panel.Dispose())
}

func TestRegistry_Close(t *testing.T) {
	aClient := &fakeClient{}
	registry := fakeRegistry(aClient)
	for i := 0; i < 3; i++ {
		panel := registry.Open(nil)
		require.NoError(t, panel.Handle(context.Background(), []byte(`{"command":"connect","data":{"transport":"stdio","command":"provider"}}`)))
		panel.Wait()
	}

	require.NoError(t, registry.Close())
	assert.Equal(t, 0, registry.Len())
	assert.Equal(t, int32(3), aClient.closes.Load())
}
