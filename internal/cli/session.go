package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/config"
)

// ListSessions prints the IDs of stored sessions, one per line.
func ListSessions(ctx context.Context, cfg config.Config, out io.Writer) error {
	logger := createLogger(cfg.Debug)
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	ids, err := newSessionManager(cfg, logger, backends, nil).List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No sessions.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

// InspectSession prints the stored state of a session as JSON.
func InspectSession(ctx context.Context, cfg config.Config, id string, out io.Writer) error {
	logger := createLogger(cfg.Debug)
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	state, err := newSessionManager(cfg, logger, backends, nil).Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", id, err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

// DeleteSession removes a stored session.
func DeleteSession(ctx context.Context, cfg config.Config, id string, out io.Writer) error {
	logger := createLogger(cfg.Debug)
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	if err := newSessionManager(cfg, logger, backends, nil).Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	printSystemMessage(out, "Session '%s' deleted.", id)
	return nil
}

// ShowHistory prints the most recent history entries as Markdown, passed
// through render when it is not nil.
func ShowHistory(ctx context.Context, cfg config.Config, limit int, render abacus.ContentRenderer, out io.Writer) error {
	logger := createLogger(cfg.Debug)
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	entries, err := backends.History.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	text := abacus.HistoryMarkdown(entries)
	if render != nil {
		if rendered, err := render(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprint(out, text)
	return nil
}

// ClearHistory empties the configured history backend.
func ClearHistory(ctx context.Context, cfg config.Config, out io.Writer) error {
	logger := createLogger(cfg.Debug)
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	if err := backends.History.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	printSystemMessage(out, "History cleared.")
	return nil
}
