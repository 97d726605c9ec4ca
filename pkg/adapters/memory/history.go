package memory

import (
	"context"
	"sync"

	"github.com/aretw0/abacus/pkg/domain"
)

// History implements ports.HistoryStore in memory.
// Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

func (h *History) Add(ctx context.Context, entry domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

func (h *History) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(h.entries) {
		start = len(h.entries) - limit
	}
	out := make([]domain.HistoryEntry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out, nil
}

func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	return nil
}
