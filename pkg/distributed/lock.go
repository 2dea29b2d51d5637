package distributed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrLockTimeout = errors.New("lock acquisition timeout")
	ErrNotHeld     = errors.New("lock was not held by this instance")
)

const retryInterval = 25 * time.Millisecond

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// renewScript extends the TTL only when the key still carries our token.
var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLock is one held lease on a Redis key.
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration

	stopRenew chan struct{}
	stopOnce  sync.Once
}

// RedisLocker hands out leases on keys under a common prefix. Leases expire
// after ttl unless renewed; the holder renews at half the ttl.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker creates a locker. wait bounds how long Lock blocks.
func NewRedisLocker(client *redis.Client, prefix string, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, wait: wait}
}

// Lock acquires key and returns its release function.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	return func() {
		// the lease expires on its own if release fails
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}

// Acquire polls SET NX PX until the key is free or wait elapses.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (*RedisLock, error) {
	lock := &RedisLock{
		client:    l.client,
		key:       l.prefix + key,
		token:     newToken(),
		ttl:       l.ttl,
		stopRenew: make(chan struct{}),
	}

	deadline := time.Now().Add(l.wait)
	for {
		acquired, err := l.client.SetNX(ctx, lock.key, lock.token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", lock.key, err)
		}
		if acquired {
			go lock.renew()
			return lock, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, lock.key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Release gives the lease back.
func (l *RedisLock) Release(ctx context.Context) error {
	l.stopOnce.Do(func() { close(l.stopRenew) })

	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

func (l *RedisLock) renew() {
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/2)
			n, err := renewScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
			cancel()
			if err != nil || n == 0 {
				return
			}
		case <-l.stopRenew:
			return
		}
	}
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
