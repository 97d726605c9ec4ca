package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock acquired through DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes access to a calculator session across
// processes. The engine itself is single-threaded; hosts serving the same
// session from several replicas take this lock around load/press/save.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl if never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
