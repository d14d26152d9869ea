package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockAcquire is returned when the lock cannot be acquired before the
// context ends.
var ErrLockAcquire = errors.New("failed to acquire poll lock")

const lockRetryInterval = 20 * time.Millisecond

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// Locker is a SET NX PX lock shared by every process using the same key.
type Locker struct {
	client backend.UniversalClient
	key    string
}

func NewLocker(client backend.UniversalClient, key string) *Locker {
	return &Locker{
		client: client,
		key:    key,
	}
}

// Lock polls until the lock is free or ctx is done. ttl bounds how long a
// crashed holder can block others.
func (l *Locker) Lock(ctx context.Context, ttl time.Duration) (UnlockFunc, error) {
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrLockAcquire, ctx.Err())
			}
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockAcquire, ctx.Err())
		case <-ticker.C:
		}
	}
}
