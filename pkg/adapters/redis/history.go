package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/abacus/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// History implements ports.HistoryStore as a Redis list of JSON entries,
// appended with RPUSH so the list is oldest first.
type History struct {
	client *backend.Client
	key    string
}

// NewHistory creates a history list under <prefix>history.
func NewHistory(client *backend.Client, prefix string) *History {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &History{client: client, key: prefix + "history"}
}

func (h *History) Add(ctx context.Context, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	if err := h.client.RPush(ctx, h.key, data).Err(); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List returns the newest limit entries, oldest first.
func (h *History) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := h.client.LRange(ctx, h.key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (h *History) Clear(ctx context.Context) error {
	return h.client.Del(ctx, h.key).Err()
}
