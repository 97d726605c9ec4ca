package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/session"
)

// SlowStore simulates IO latency to provoke races if locking is missing.
type SlowStore struct {
	mu   sync.Mutex
	data map[string]*domain.State
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]*domain.State)
	}
	s.data[sessionID] = state.Snapshot()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.data[sessionID]; ok {
		return state.Snapshot(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_CreateAndPress(t *testing.T) {
	history := memory.NewHistory()
	mgr := session.NewManager(memory.NewStore(),
		session.WithEngineOptions(runtime.WithHistory(history)))
	ctx := context.Background()

	state, err := mgr.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, state.SessionID)

	res, err := mgr.Press(ctx, state.SessionID, "3", "+", "2", "=")
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Equal(t, "5", res.State.Display.Output)
	assert.Equal(t, "3+2", res.State.Display.Input)
	require.NotNil(t, res.Diff)
	require.NotNil(t, res.Diff.Output)
	assert.Equal(t, "5", *res.Diff.Output)

	// The next batch resumes from the saved state.
	res, err = mgr.Press(ctx, state.SessionID, "=")
	require.NoError(t, err)
	assert.Equal(t, "7", res.State.Display.Output)

	loaded, err := mgr.Load(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "7", loaded.Display.Output)

	entries, err := history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "3+2", entries[0].Expression)
}

func TestManager_PressFailuresContinue(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	state, err := mgr.Create(ctx)
	require.NoError(t, err)

	res, err := mgr.Press(ctx, state.SessionID, ")", "4", "sqrt")
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, ")", res.Failures[0].Key)
	assert.Equal(t, domain.KindNoOpeningBracket, res.Failures[0].Kind)
	assert.Equal(t, "Error: No opening bracket", res.Failures[0].Message)
	assert.Equal(t, "2", res.State.Display.Output)
}

func TestManager_PressUnknownKey(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	state, err := mgr.Create(ctx)
	require.NoError(t, err)

	_, err = mgr.Press(ctx, state.SessionID, "1", "bogus")
	assert.ErrorIs(t, err, session.ErrUnknownKey)

	loaded, err := mgr.Load(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Expression, "nothing applied")
}

func TestManager_PressMissingSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Press(context.Background(), "nope", "1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_ConcurrentPressIsSerialized(t *testing.T) {
	mgr := session.NewManager(&SlowStore{}, session.WithLocker(memory.NewLocker()))
	ctx := context.Background()
	id := "race-test"

	_, err := mgr.LoadOrStart(ctx, id)
	require.NoError(t, err)
	_, err = mgr.Press(ctx, id, "0", "=")
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Press(ctx, id, "+", "1", "=")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10", state.Display.Output, "every increment must survive")
}

func TestManager_LoadOrStart(t *testing.T) {
	mgr := session.NewManager(&SlowStore{})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := mgr.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, state)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, state.SessionID)
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("redis down")
}

func TestManager_LockerFailure(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(failingLocker{}))
	_, err := mgr.Create(context.Background())
	assert.ErrorContains(t, err, "redis down")
}

func TestManager_DeleteAndList(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	a, err := mgr.Create(ctx)
	require.NoError(t, err)
	b, err := mgr.Create(ctx)
	require.NoError(t, err)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.SessionID, b.SessionID}, ids)

	require.NoError(t, mgr.Delete(ctx, a.SessionID))
	_, err = mgr.Load(ctx, a.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
