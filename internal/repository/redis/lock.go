package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const syncLockKeyPrefix = "sync:lock:"

// SyncLock is a best-effort per-user mutex built on SETNX. It guards the
// guest-to-account reconciliation against concurrent duplicate runs, e.g.
// a double-submitted login. The TTL bounds lock lifetime if the holder
// dies mid-run.
type SyncLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSyncLock creates a sync lock with the given hold TTL.
func NewSyncLock(client *redis.Client, ttl time.Duration) *SyncLock {
	return &SyncLock{client: client, ttl: ttl}
}

// Acquire attempts to take the lock for the user. Returns false when
// another reconciliation already holds it.
func (l *SyncLock) Acquire(ctx context.Context, userID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, syncLockKeyPrefix+userID, "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sync lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock for the user.
func (l *SyncLock) Release(ctx context.Context, userID string) error {
	if err := l.client.Del(ctx, syncLockKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("release sync lock: %w", err)
	}
	return nil
}
