package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/abacus/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout REPL output).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// InterruptibleReader wraps an io.Reader (like os.Stdin) and checks for a cancellation signal.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

// errInterrupted is returned by InterruptibleReader once cancel is closed.
var errInterrupted = errors.New("interrupted")

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{
		base:   base,
		cancel: cancel,
	}
}

func (r *InterruptibleReader) Read(p []byte) (n int, err error) {
	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}

	// Read (This blocks!)
	n, err = r.base.Read(p)

	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, errInterrupted) ||
		errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(w io.Writer, err error, quiet bool, sig os.Signal) {
	if quiet || err == nil || !isInterrupted(err) {
		return
	}
	if sig == os.Interrupt {
		fmt.Fprintf(w, "[CTRL+C]\n")
	} else {
		fmt.Fprintf(w, "\n")
	}
	printSystemMessage(w, "Interrupted.")
}
