package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/viant/jsonrpc/transport/client/http/sse"

	"github.com/viant/mcp-inspector/client"
	"github.com/viant/mcp-inspector/schema"
)

// Stream is a provider reached over a server-sent events channel.
type Stream struct {
	request *schema.ConnectionRequest
	options *Options
	logger  *slog.Logger

	mux          sync.Mutex
	closed       bool
	connected    bool
	cancel       context.CancelFunc
	httpClient   *http.Client
	roundTripper *http.Transport
	rpc          client.Transport
	client       *client.Client
	closeOnce    sync.Once
}

type opened struct {
	rpc client.Transport
	err error
}

// Connect opens the event stream and performs the handshake through it.
func (s *Stream) Connect(ctx context.Context) error {
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		return fmt.Errorf("%w: %w", schema.ErrUnreachable, schema.ErrClosed)
	}
	if s.cancel != nil {
		s.mux.Unlock()
		return fmt.Errorf("%w: stream already opened", schema.ErrUnreachable)
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.httpClient, s.roundTripper = s.options.httpClient()
	httpClient := s.httpClient
	s.mux.Unlock()

	result := make(chan opened, 1)
	go func() {
		rpc, err := sse.New(streamCtx, s.request.ServerURL,
			sse.WithHttpClient(httpClient),
			sse.WithMessageHttpClient(httpClient),
			sse.WithHandler(client.NewHandler(s.logger)))
		if err != nil {
			result <- opened{err: err}
			return
		}
		result <- opened{rpc: rpc}
	}()

	timer := time.NewTimer(s.options.HandshakeTimeout)
	defer timer.Stop()
	var rpc client.Transport
	select {
	case outcome := <-result:
		if outcome.err != nil {
			_ = s.Close()
			return fmt.Errorf("%w: %s: %w", schema.ErrUnreachable, s.request.ServerURL, outcome.err)
		}
		rpc = outcome.rpc
	case <-timer.C:
		go discard(result)
		_ = s.Close()
		return fmt.Errorf("%w: %s: timed out after %s", schema.ErrUnreachable, s.request.ServerURL, s.options.HandshakeTimeout)
	case <-ctx.Done():
		go discard(result)
		_ = s.Close()
		return fmt.Errorf("%w: %s: %w", schema.ErrUnreachable, s.request.ServerURL, ctx.Err())
	}
	s.logger.Debug("event stream opened")

	aClient := client.New(s.options.ClientName, s.options.ClientVersion, rpc,
		client.WithLogger(s.logger),
		client.WithProtocolVersion(s.options.ProtocolVersion))
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		_ = closeTransport(rpc)
		return fmt.Errorf("%w: %w", schema.ErrUnreachable, schema.ErrClosed)
	}
	s.rpc = rpc
	s.client = aClient
	s.mux.Unlock()

	handshakeCtx, cancelHandshake := context.WithTimeout(ctx, s.options.HandshakeTimeout)
	defer cancelHandshake()
	if _, err := aClient.Initialize(handshakeCtx); err != nil {
		_ = s.Close()
		return fmt.Errorf("%w: %s: %w", schema.ErrHandshake, s.request.ServerURL, err)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.closed {
		return fmt.Errorf("%w: %w", schema.ErrHandshake, schema.ErrClosed)
	}
	s.connected = true
	return nil
}

// ListTools lists every tool advertised by the provider.
func (s *Stream) ListTools(ctx context.Context) ([]schema.ToolDescriptor, error) {
	s.mux.Lock()
	connected, aClient := s.connected, s.client
	s.mux.Unlock()
	if !connected {
		return nil, schema.ErrNotConnected
	}
	return listTools(ctx, aClient, s.options.HandshakeTimeout, s.request.ServerURL)
}

// Close cancels the stream and drops pooled connections.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mux.Lock()
		s.closed = true
		s.connected = false
		cancel, rpc, httpClient, roundTripper := s.cancel, s.rpc, s.httpClient, s.roundTripper
		s.mux.Unlock()
		if cancel != nil {
			cancel()
		}
		err = closeTransport(rpc)
		if roundTripper != nil {
			roundTripper.CloseIdleConnections()
		} else if httpClient != nil {
			httpClient.CloseIdleConnections()
		}
		s.logger.Debug("event stream closed")
	})
	return err
}

// discard releases a stream that finished opening after its Connect gave up.
func discard(result <-chan opened) {
	if outcome := <-result; outcome.rpc != nil {
		_ = closeTransport(outcome.rpc)
	}
}

func closeTransport(rpc client.Transport) error {
	if closer, ok := rpc.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NewStream creates a stream transport; nothing is opened before Connect.
func NewStream(request *schema.ConnectionRequest, options *Options) *Stream {
	if options == nil {
		options = NewOptions()
	}
	return &Stream{
		request: request,
		options: options,
		logger:  options.Logger.With("transport", schema.TransportSSE, "target", request.Target()),
	}
}
