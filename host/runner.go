package host

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/viant/mcp-inspector/schema"
	"github.com/viant/mcp-inspector/session"
)

const maxLineSize = 4 * 1024 * 1024

// Run parses args and serves one panel over stdin/stdout until EOF or a termination signal.
func Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	options, err := ParseOptions(ctx, args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}
	logger, err := options.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	return Serve(ctx, options, os.Stdin, os.Stdout, logger)
}

// Serve reads newline-delimited panel commands from in and writes statuses to out.
// On EOF it waits for pending connection attempts; on cancellation it returns at once.
// Either way every panel is disposed before Serve returns.
func Serve(ctx context.Context, options *Options, in io.Reader, out io.Writer, logger *slog.Logger) error {
	registry := NewRegistry(
		WithLogger(logger),
		WithSessionOptions(session.WithTransportOptions(options.TransportOptions(logger)...)),
	)
	defer registry.Close()

	writer := &lineWriter{encoder: json.NewEncoder(out), logger: logger}
	panel := registry.Open(writer.emit)
	logger.Info("inspector ready", "panel", panel.ID)

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- append([]byte(nil), line...):
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("inspector interrupted", "reason", context.Cause(ctx))
			return nil
		case line, ok := <-lines:
			if !ok {
				panel.Wait()
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if err := panel.Handle(ctx, line); err != nil {
				logger.Debug("panel message failed", "error", err)
			}
		}
	}
}

// lineWriter serializes outbound messages as JSON lines.
type lineWriter struct {
	mux     sync.Mutex
	encoder *json.Encoder
	logger  *slog.Logger
}

func (w *lineWriter) emit(message *schema.Outbound) {
	w.mux.Lock()
	defer w.mux.Unlock()
	if err := w.encoder.Encode(message); err != nil {
		w.logger.Error("failed to write status", "error", err)
	}
}
