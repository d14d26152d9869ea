package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_LockUnlock(t *testing.T) {
	mr, client := newMiniredis(t)
	locker := NewLocker(client, "test:lock")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock"))
}

func TestLocker_Contention(t *testing.T) {
	_, client := newMiniredis(t)
	first := NewLocker(client, "test:lock")
	second := NewLocker(client, "test:lock")
	ctx := context.Background()

	unlock, err := first.Lock(ctx, 5*time.Second)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = second.Lock(short, 5*time.Second)
	assert.ErrorIs(t, err, ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	unlock2, err := second.Lock(ctx, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newMiniredis(t)
	locker := NewLocker(client, "test:lock")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("test:lock"))

	unlock2, err := locker.Lock(ctx, time.Second)
	require.NoError(t, err)

	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock"), "an expired holder must not release the new lock")
	require.NoError(t, unlock2(ctx))
}
