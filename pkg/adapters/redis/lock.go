package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/abacus/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// lockPollInterval is how often a blocked Lock retries SET NX.
const lockPollInterval = 50 * time.Millisecond

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker implements ports.DistributedLocker with SET NX PX and a
// token-checked release.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a locker whose keys live under <prefix>lock:.
func NewLocker(client *backend.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Locker{client: client, prefix: prefix}
}

// Lock polls until the key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
