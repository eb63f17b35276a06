package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/jsonrpc"
	jtransport "github.com/viant/jsonrpc/transport"
	"github.com/viant/jsonrpc/transport/client/base"

	"github.com/viant/mcp-inspector/client"
)

const (
	roundTripCapacity = 20
	roundTripTimeout  = 15 * time.Minute
)

// pipe speaks newline-delimited JSON-RPC over a process stdin/stdout pair.
// Correlation and provider request dispatch are handled by base.Client;
// pipe adds line framing and fails pending calls once the output closes.
// RoundTrips is not safe for concurrent use, so tripMux guards it.
type pipe struct {
	client   *base.Client
	writer   io.Writer
	writeMux sync.Mutex
	logger   *slog.Logger
	tripMux  sync.Mutex

	mux  sync.Mutex
	done chan struct{}
	err  error
}

// SendData writes one framed message to the provider.
func (p *pipe) SendData(_ context.Context, data []byte) error {
	p.writeMux.Lock()
	defer p.writeMux.Unlock()
	select {
	case <-p.done:
		return p.closedErr()
	default:
	}
	if _, err := p.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write to provider: %w", err)
	}
	return nil
}

// Send issues a request and waits for its response or the end of provider output.
func (p *pipe) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	if request.Id == nil {
		request.Id = p.client.NextRequestID()
	}
	p.tripMux.Lock()
	trip, err := p.client.RoundTrips.Add(request)
	p.tripMux.Unlock()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(request)
	if err != nil {
		p.forget(request.Id)
		return nil, fmt.Errorf("failed to marshal %s: %w", request.Method, err)
	}
	if err = p.SendData(ctx, append(data, '\n')); err != nil {
		p.forget(request.Id)
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	if err = trip.Wait(ctx, roundTripTimeout); err != nil {
		p.forget(request.Id)
		select {
		case <-p.done:
			return nil, p.closedErr()
		default:
		}
		return nil, err
	}
	return trip.Response, nil
}

// forget releases the round trip slot of an abandoned request.
func (p *pipe) forget(id jsonrpc.RequestId) {
	p.tripMux.Lock()
	defer p.tripMux.Unlock()
	_, _ = p.client.RoundTrips.Match(id)
}

func (p *pipe) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	return p.client.Notify(ctx, notification)
}

func (p *pipe) closedErr() error {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.err != nil {
		return p.err
	}
	return io.ErrClosedPipe
}

// readLoop hands every output line to the client until reader is exhausted.
func (p *pipe) readLoop(ctx context.Context, reader io.Reader) {
	buffered := bufio.NewReader(reader)
	var err error
	for {
		var line []byte
		line, err = buffered.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			p.dispatch(ctx, trimmed)
		}
		if err != nil {
			break
		}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	p.mux.Lock()
	p.err = fmt.Errorf("provider output closed: %w", err)
	p.mux.Unlock()
	close(p.done)
}

func (p *pipe) dispatch(ctx context.Context, line []byte) {
	if !json.Valid(line) {
		p.logger.Debug("ignoring non JSON-RPC output", "line", string(line))
		return
	}
	p.tripMux.Lock()
	defer p.tripMux.Unlock()
	p.client.HandleMessage(ctx, line)
}

// rpcLogger routes base.Client diagnostics to slog.
type rpcLogger struct {
	logger *slog.Logger
}

func (l *rpcLogger) Errorf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func newPipe(writer io.Writer, logger *slog.Logger) *pipe {
	ret := &pipe{
		writer: writer,
		logger: logger,
		done:   make(chan struct{}),
	}
	ret.client = &base.Client{
		Transport:  ret,
		Handler:    client.NewHandler(logger),
		RoundTrips: jtransport.NewRoundTrips(roundTripCapacity),
		RunTimeout: roundTripTimeout,
		Logger:     &rpcLogger{logger: logger},
	}
	return ret
}
