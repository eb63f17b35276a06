package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/viant/mcp-inspector/client"
	"github.com/viant/mcp-inspector/schema"
)

// Process is a provider running as a local subprocess.
type Process struct {
	request *schema.ConnectionRequest
	options *Options
	logger  *slog.Logger

	mux       sync.Mutex
	closed    bool
	connected bool
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	client    *client.Client
	cancel    context.CancelFunc
	exited    chan struct{}
	closeOnce sync.Once
}

// Connect spawns the provider and performs the handshake over its stdin/stdout.
func (p *Process) Connect(ctx context.Context) error {
	aClient, err := p.start()
	if err != nil {
		return err
	}
	handshakeCtx, cancel := context.WithTimeout(ctx, p.options.HandshakeTimeout)
	defer cancel()
	if _, err = aClient.Initialize(handshakeCtx); err != nil {
		_ = p.Close()
		return fmt.Errorf("%w: %s: %w", schema.ErrHandshake, p.request.Target(), err)
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.closed {
		return fmt.Errorf("%w: %w", schema.ErrHandshake, schema.ErrClosed)
	}
	p.connected = true
	return nil
}

func (p *Process) start() (*client.Client, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.closed {
		return nil, fmt.Errorf("%w: %w", schema.ErrSpawn, schema.ErrClosed)
	}
	if p.cmd != nil {
		return nil, fmt.Errorf("%w: process already started", schema.ErrSpawn)
	}
	argv := p.request.Argv()
	cmd := exec.Command(argv[0], argv[1:]...)
	setProcessGroup(cmd)
	cmd.WaitDelay = p.options.CloseTimeout
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrSpawn, err)
	}
	stdoutReader, stdoutWriter := io.Pipe()
	stderrReader, stderrWriter := io.Pipe()
	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter
	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", schema.ErrSpawn, argv[0], err)
	}
	p.logger.Debug("provider process started", "pid", cmd.Process.Pid, "argv", argv)

	ctx, cancel := context.WithCancel(context.Background())
	rpc := newPipe(stdin, p.logger)
	p.cmd = cmd
	p.stdin = stdin
	p.cancel = cancel
	p.exited = make(chan struct{})
	p.client = client.New(p.options.ClientName, p.options.ClientVersion, rpc,
		client.WithLogger(p.logger),
		client.WithProtocolVersion(p.options.ProtocolVersion))

	go p.drain(stderrReader)
	go rpc.readLoop(ctx, stdoutReader)
	go func() {
		err := cmd.Wait()
		p.logger.Debug("provider process exited", "pid", cmd.Process.Pid, "error", err)
		_ = stdoutWriter.CloseWithError(io.EOF)
		_ = stderrWriter.CloseWithError(io.EOF)
		close(p.exited)
	}()
	return p.client, nil
}

// drain forwards provider stderr to the logger.
func (p *Process) drain(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		p.logger.Debug("provider stderr", "line", scanner.Text())
	}
}

// ListTools lists every tool advertised by the provider.
func (p *Process) ListTools(ctx context.Context) ([]schema.ToolDescriptor, error) {
	p.mux.Lock()
	connected, aClient := p.connected, p.client
	p.mux.Unlock()
	if !connected {
		return nil, schema.ErrNotConnected
	}
	return listTools(ctx, aClient, p.options.HandshakeTimeout, p.request.Target())
}

// Close stops the provider: stdin is closed first, then its process group is
// sent SIGTERM, then SIGKILL, each step waiting up to CloseTimeout for the
// process to exit.
func (p *Process) Close() error {
	p.closeOnce.Do(p.shutdown)
	return nil
}

func (p *Process) shutdown() {
	p.mux.Lock()
	p.closed = true
	p.connected = false
	cmd, stdin, exited, cancel := p.cmd, p.stdin, p.exited, p.cancel
	p.mux.Unlock()
	if cmd == nil {
		return
	}
	defer cancel()
	// members left behind by an exited wrapper are killed along with the group
	defer func() { _ = signalGroup(cmd, syscall.SIGKILL) }()
	_ = stdin.Close()
	if waitFor(exited, p.options.CloseTimeout) {
		return
	}
	p.logger.Debug("terminating provider process group", "pid", cmd.Process.Pid)
	_ = signalGroup(cmd, syscall.SIGTERM)
	if waitFor(exited, p.options.CloseTimeout) {
		return
	}
	p.logger.Debug("killing provider process group", "pid", cmd.Process.Pid)
	_ = signalGroup(cmd, syscall.SIGKILL)
	if !waitFor(exited, p.options.CloseTimeout) {
		p.logger.Warn("provider process not reaped", "pid", cmd.Process.Pid)
	}
}

// Exited returns a channel closed once the process has been reaped, nil before spawn.
func (p *Process) Exited() <-chan struct{} {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.exited
}

func waitFor(done <-chan struct{}, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// NewProcess creates a local-process transport; nothing is spawned before Connect.
func NewProcess(request *schema.ConnectionRequest, options *Options) *Process {
	if options == nil {
		options = NewOptions()
	}
	return &Process{
		request: request,
		options: options,
		logger:  options.Logger.With("transport", schema.TransportStdio, "target", request.Target()),
	}
}
