package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// MockStore is an in-memory implementation of StateStore for testing purposes.
type MockStore struct {
	data map[string]*domain.State
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.State),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	m.data[sessionID] = state.Snapshot()
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Snapshot(), nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MockHistory is a slice-backed HistoryStore.
type MockHistory struct {
	entries []domain.HistoryEntry
}

func (m *MockHistory) Add(ctx context.Context, e domain.HistoryEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *MockHistory) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	out := m.entries
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return append([]domain.HistoryEntry(nil), out...), nil
}

func (m *MockHistory) Clear(ctx context.Context) error {
	m.entries = nil
	return nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, NewMockStore())
}

func TestHistoryStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, &MockHistory{})
}
