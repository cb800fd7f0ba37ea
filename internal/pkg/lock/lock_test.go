package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	release, err := l.Acquire(ctx, "payroll:1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "payroll:1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	// other keys are independent
	releaseOther, err := l.Acquire(ctx, "payroll:2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, releaseOther(ctx))

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx))

	release, err = l.Acquire(ctx, "payroll:1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestLocalLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.nowFn = func() time.Time { return now }

	staleRelease, err := l.Acquire(ctx, "payroll:1", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	release, err := l.Acquire(ctx, "payroll:1", time.Minute)
	require.NoError(t, err, "expired lock should be reacquirable")

	// releasing the expired acquisition must not free the new one
	require.NoError(t, staleRelease(ctx))
	_, err = l.Acquire(ctx, "payroll:1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))
}

func TestLocalLocker_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	var acquired int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(ctx, "payroll:1", time.Minute); err == nil {
				atomic.AddInt32(&acquired, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired)
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(ctx).Err())

	l := NewRedisLocker(client)
	key := "test:" + uuid.NewString()

	release, err := l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, release(ctx))

	release, err = l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}
