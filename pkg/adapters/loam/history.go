package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/abacus/pkg/domain"
)

const (
	kindEntry  = "entry"
	kindMarker = "marker"

	markerID = "cleared"
	seqWidth = 20
)

// EntryMetadata is the frontmatter of a history document. Numbers are kept as
// strings so strict-mode decoding never has to guess their type.
type EntryMetadata struct {
	Kind       string `json:"kind" mapstructure:"kind"`
	Seq        string `json:"seq" mapstructure:"seq"`
	Expression string `json:"expression,omitempty" mapstructure:"expression"`
	Result     string `json:"result,omitempty" mapstructure:"result"`
	RecordedAt string `json:"recorded_at,omitempty" mapstructure:"recorded_at"`
}

// History implements ports.HistoryStore as a Loam repository of Markdown
// documents, one per entry. The journal is append-only: Clear saves a marker
// document and List ignores every entry sequenced before it.
type History struct {
	Repo *loam.TypedRepository[EntryMetadata]

	mu      sync.Mutex
	lastSeq int64
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[EntryMetadata]) *History {
	return &History{Repo: repo}
}

// Open initializes (or reuses) a Loam repository at dir.
func Open(dir string) (*History, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid history path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize loam history: %w", err)
	}
	return New(loam.NewTypedRepository[EntryMetadata](repo)), nil
}

// nextSeq returns a strictly increasing sequence number seeded by the clock,
// so several processes appending to one directory rarely collide.
func (h *History) nextSeq() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= h.lastSeq {
		seq = h.lastSeq + 1
	}
	h.lastSeq = seq
	return seq
}

func formatSeq(seq int64) string {
	return fmt.Sprintf("%0*d", seqWidth, seq)
}

func (h *History) Add(ctx context.Context, entry domain.HistoryEntry) error {
	seq := formatSeq(h.nextSeq())
	result := strconv.FormatFloat(entry.Result, 'g', -1, 64)

	err := h.Repo.Save(ctx, &loam.DocumentModel[EntryMetadata]{
		ID:      "h-" + seq,
		Content: fmt.Sprintf("`%s` = %s\n", entry.Expression, result),
		Data: EntryMetadata{
			Kind:       kindEntry,
			Seq:        seq,
			Expression: entry.Expression,
			Result:     result,
			RecordedAt: entry.RecordedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("loam save history entry: %w", err)
	}
	return nil
}

// List returns live entries in sequence order.
func (h *History) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	docs, err := h.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list history: %w", err)
	}

	var (
		cleared string
		metas   []EntryMetadata
	)
	for _, doc := range docs {
		switch doc.Data.Kind {
		case kindMarker:
			if doc.Data.Seq > cleared {
				cleared = doc.Data.Seq
			}
		case kindEntry:
			metas = append(metas, doc.Data)
		}
	}

	// Zero-padded sequences sort lexically.
	sort.Slice(metas, func(i, j int) bool { return metas[i].Seq < metas[j].Seq })

	entries := make([]domain.HistoryEntry, 0, len(metas))
	for _, m := range metas {
		if m.Seq <= cleared {
			continue
		}
		e, err := decodeEntry(m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Clear hides every entry added so far.
func (h *History) Clear(ctx context.Context) error {
	seq := formatSeq(h.nextSeq())
	err := h.Repo.Save(ctx, &loam.DocumentModel[EntryMetadata]{
		ID:      markerID,
		Content: "History cleared.\n",
		Data:    EntryMetadata{Kind: kindMarker, Seq: seq},
	})
	if err != nil {
		return fmt.Errorf("loam save history marker: %w", err)
	}
	return nil
}

func decodeEntry(m EntryMetadata) (domain.HistoryEntry, error) {
	result, err := strconv.ParseFloat(m.Result, 64)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("history entry %s: bad result %q: %w", m.Seq, m.Result, err)
	}
	var at time.Time
	if m.RecordedAt != "" {
		at, err = time.Parse(time.RFC3339Nano, m.RecordedAt)
		if err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("history entry %s: bad timestamp: %w", m.Seq, err)
		}
	}
	return domain.HistoryEntry{Expression: m.Expression, Result: result, RecordedAt: at}, nil
}
