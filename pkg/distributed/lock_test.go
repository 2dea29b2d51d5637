package distributed

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerializesPerKey(t *testing.T) {
	locker := NewLocalLocker()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "scenario:a")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, locker.size())
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalLocker()

	unlockA, err := locker.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalLocker_ContextCancel(t *testing.T) {
	locker := NewLocalLocker()

	unlock, err := locker.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // idempotent
	assert.Equal(t, 0, locker.size())
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("NETQOE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NETQOE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisLocker_Integration(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	locker := NewRedisLocker(client, "netqoe:test:lock:", time.Second, 100*time.Millisecond)

	first, err := locker.Acquire(ctx, t.Name())
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, t.Name())
	assert.ErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, first.Release(ctx))
	assert.ErrorIs(t, first.Release(ctx), ErrNotHeld)

	unlock, err := locker.Lock(ctx, t.Name())
	require.NoError(t, err)
	unlock()
}

func TestRedisLocker_RenewsLease(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	locker := NewRedisLocker(client, "netqoe:test:lock:", 200*time.Millisecond, 0)

	lock, err := locker.Acquire(ctx, t.Name())
	require.NoError(t, err)
	defer lock.Release(ctx)

	time.Sleep(500 * time.Millisecond)
	held, err := client.Exists(ctx, "netqoe:test:lock:"+t.Name()).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), held)
}
