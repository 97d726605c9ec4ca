package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to calculator sessions. Per-session mutexes are
// reference counted and dropped once unused; an optional DistributedLocker
// extends the guarantee across replicas.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	engineOpts []runtime.EngineOption
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEngineOptions sets the options applied to every engine built by Press,
// typically the history sink, hooks and logger.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking it.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a new session with a random ID and persists it.
func (m *Manager) Create(ctx context.Context) (*domain.State, error) {
	id := uuid.NewString()
	state := domain.NewState(id)
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, state)
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.logger.Debug("session created", "session_id", id)
	return state, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// LoadOrStart loads a session, creating a clean one under sessionID if absent.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("check session %s: %w", sessionID, err)
		}

		state = domain.NewState(sessionID)
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("initialize session %s: %w", sessionID, err)
		}
		return nil
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// WithLock runs fn while holding the session's local and distributed locks.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("lock session %s: %w", sessionID, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("release session lock failed, it will expire",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
