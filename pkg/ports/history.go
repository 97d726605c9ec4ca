package ports

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// HistorySink receives computed results. It is append-only: no dedup and no
// size bound are implied.
type HistorySink interface {
	Add(ctx context.Context, entry domain.HistoryEntry) error
}

// HistoryStore is a HistorySink that can also be read back and cleared.
type HistoryStore interface {
	HistorySink

	// List returns up to limit entries, oldest first. limit <= 0 means all.
	// When limited, the most recent entries are returned.
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error
}
