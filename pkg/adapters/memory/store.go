package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/abacus/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]*domain.State
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]*domain.State)}
}

// Save keeps a private copy of the state.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = state.Snapshot()
	return nil
}

// Load returns a copy so callers cannot mutate the stored state.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Snapshot(), nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
