package domain

import "time"

// HistoryEntry is a single recorded calculation.
type HistoryEntry struct {
	Expression string    `json:"expression"`
	Result     float64   `json:"result"`
	RecordedAt time.Time `json:"recorded_at"`
}
