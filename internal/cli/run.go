package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/presentation/tui"
)

// RunOptions configures the interactive calculator.
type RunOptions struct {
	Config    config.Config
	SessionID string
	Headless  bool

	// Input and Output default to os.Stdin and os.Stdout.
	Input  io.Reader
	Output io.Writer
}

// Run starts the REPL. With a SessionID the calculator state is loaded
// from the store before and saved after the run.
func Run(opts RunOptions) error {
	logger := createLogger(opts.Config.Debug)
	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	backends, err := OpenBackends(sigCtx, opts.Config, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	calcOpts := calculatorOptions(opts.Config, logger, backends, nil)

	mgr := newSessionManager(opts.Config, logger, backends, nil)
	if opts.SessionID != "" {
		state, err := mgr.LoadOrStart(sigCtx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("failed to init session: %w", err)
		}
		calcOpts = append(calcOpts, abacus.WithState(state))
		logger.Info("Session Active", "session_id", opts.SessionID)
		if !opts.Headless {
			printSystemMessage(out, "Session '%s' active.", opts.SessionID)
		}
	}

	calc := abacus.New(calcOpts...)

	if !opts.Headless {
		tui.PrintBanner(out)
	}

	r := abacus.NewRunner()
	r.Input = NewInterruptibleReader(in, sigCtx.Done())
	r.Output = out
	r.Headless = opts.Headless
	r.History = backends.History
	r.HistoryLimit = opts.Config.HistoryLimit
	if !opts.Headless && tui.IsInteractive() {
		r.Renderer = tui.NewRenderer()
	}

	runErr := r.Run(sigCtx, calc)

	if opts.SessionID != "" {
		// The run context may already be cancelled by a signal.
		if err := mgr.Save(context.Background(), opts.SessionID, calc.State()); err != nil {
			logger.Error("failed to save session", "session_id", opts.SessionID, "err", err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	logCompletion(out, runErr, opts.Headless, sigCtx.Signal())

	return handleExecutionError(runErr)
}

// Eval evaluates each expression on a fresh calculator and prints its
// output display. It fails if any expression fails.
func Eval(ctx context.Context, cfg config.Config, expressions []string, out io.Writer) error {
	logger := createLogger(cfg.Debug)
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	opts := calculatorOptions(cfg, logger, backends, nil)
	failed := 0
	for _, expr := range expressions {
		res, err := abacus.Apply(ctx, expr, opts...)
		fmt.Fprintln(out, res.Display.Output)
		if err != nil {
			logger.Debug("evaluation failed", "expression", expr, "err", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", failed, len(expressions))
	}
	return nil
}
