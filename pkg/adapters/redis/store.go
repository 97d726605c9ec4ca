package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "abacus:"

// noExpiry is the index score used for sessions without a TTL (2100-01-01).
const noExpiry = 4102444800

// Store implements ports.StateStore on Redis. Each session is a JSON string
// under <prefix>session:<id>; a sorted set indexes the live IDs by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires sessions ttl after their last save. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewClient dials Redis with the given address, password and database.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// NewStore creates a session store on an existing client.
func NewStore(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "sessions"
}

// Save writes the state and refreshes its index entry in one pipeline.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}

	expiry := float64(noExpiry)
	if s.ttl > 0 {
		expiry = float64(time.Now().Add(s.ttl).Unix())
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(sessionID), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: expiry, Member: sessionID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Load reads a session, returning domain.ErrSessionNotFound when absent or expired.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Delete removes the session and its index entry.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(sessionID))
		pipe.ZRem(ctx, s.indexKey(), sessionID)
		return nil
	})
	return err
}

// List prunes expired index entries and returns the remaining session IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("prune sessions: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}
