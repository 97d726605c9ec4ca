package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/abacus/internal/config"
	httpadapter "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/adapters/mcp"
	"github.com/aretw0/abacus/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP API until SIGINT or SIGTERM.
func Serve(cfg config.Config, out io.Writer) error {
	logger := createLogger(cfg.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	backends, err := OpenBackends(sigCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	var metrics *observability.Metrics
	if cfg.Metrics {
		metrics = observability.NewMetrics()
	}

	handler, err := httpadapter.NewHandler(httpadapter.Config{
		Sessions:          newSessionManager(cfg, logger, backends, metrics),
		History:           backends.History,
		Metrics:           metrics,
		CalculatorOptions: calculatorOptions(cfg, logger, backends, metrics),
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("build http handler: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(out, "Starting abacus server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		printSystemMessage(out, "Shutting down... Signal: %v", sigCtx.Signal())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(out, "abacus server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on stdio, or on SSE when transport is "sse".
func ServeMCP(cfg config.Config, transport string, port int) error {
	logger := createLogger(cfg.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	backends, err := OpenBackends(sigCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	srv := mcp.NewServer(newSessionManager(cfg, logger, backends, nil),
		mcp.WithHistory(backends.History),
		mcp.WithCalculatorOptions(calculatorOptions(cfg, logger, backends, nil)...),
		mcp.WithLogger(logger),
	)

	switch transport {
	case "stdio":
		logger.Info("Starting abacus MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		err := srv.ServeSSE(sigCtx, port)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport %q (stdio, sse)", transport)
	}
}
