package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/adapters/file"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/runtime"
	"github.com/aretw0/abacus/pkg/adapters/loam"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	redisadapter "github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/session"
)

// Backends holds the storage selected by the configuration.
type Backends struct {
	History ports.HistoryStore
	Store   ports.StateStore
	// Locker is set when sessions live in redis, so that several servers
	// can share them.
	Locker ports.DistributedLocker

	redis *goredis.Client
}

// OpenBackends connects the history and session backends named in cfg.
func OpenBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}

	if cfg.UsesRedis() {
		b.redis = redisadapter.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := b.redis.Ping(ctx).Err(); err != nil {
			_ = b.redis.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug("redis connected", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	}

	switch cfg.History {
	case "loam":
		h, err := loam.Open(cfg.HistoryDir)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		b.History = h
	case "redis":
		b.History = redisadapter.NewHistory(b.redis, cfg.Redis.Prefix)
	default:
		b.History = memory.NewHistory()
	}

	switch cfg.Store {
	case "file":
		b.Store = file.New(cfg.StoreDir)
	case "redis":
		b.Store = redisadapter.NewStore(b.redis,
			redisadapter.WithPrefix(cfg.Redis.Prefix),
			redisadapter.WithTTL(cfg.Redis.TTL),
		)
		b.Locker = redisadapter.NewLocker(b.redis, cfg.Redis.Prefix)
	default:
		b.Store = memory.NewStore()
	}

	if cfg.StoreKey != "" {
		seal, err := encryptionMiddleware(cfg)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Store = middleware.Chain(b.Store, seal)
	}

	logger.Debug("backends ready", "history", cfg.History, "store", cfg.Store)
	return b, nil
}

func encryptionMiddleware(cfg config.Config) (middleware.Middleware, error) {
	active, err := middleware.DecodeKey(cfg.StoreKey)
	if err != nil {
		return nil, fmt.Errorf("store_key: %w", err)
	}
	var fallback [][]byte
	for i, s := range cfg.StoreOldKeys {
		k, err := middleware.DecodeKey(s)
		if err != nil {
			return nil, fmt.Errorf("store_old_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, k)
	}
	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
}

// Close releases network connections.
func (b *Backends) Close() error {
	if b.redis == nil {
		return nil
	}
	err := b.redis.Close()
	if errors.Is(err, goredis.ErrClosed) {
		return nil
	}
	return err
}

// createHooks combines debug logging and metrics hooks.
func createHooks(debug bool, logger *slog.Logger, metrics *observability.Metrics) domain.LifecycleHooks {
	var hooks []domain.LifecycleHooks
	if debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}
	if metrics != nil {
		hooks = append(hooks, metrics.Hooks())
	}
	return observability.Compose(hooks...)
}

// calculatorOptions prepares options for standalone calculators.
func calculatorOptions(cfg config.Config, logger *slog.Logger, b *Backends, metrics *observability.Metrics) []abacus.Option {
	return []abacus.Option{
		abacus.WithLogger(logger),
		abacus.WithHistory(b.History),
		abacus.WithLifecycleHooks(createHooks(cfg.Debug, logger, metrics)),
	}
}

// newSessionManager builds a session manager over the configured store.
func newSessionManager(cfg config.Config, logger *slog.Logger, b *Backends, metrics *observability.Metrics) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEngineOptions(
			runtime.WithLogger(logger),
			runtime.WithHistory(b.History),
			runtime.WithLifecycleHooks(createHooks(cfg.Debug, logger, metrics)),
		),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, opts...)
}
