package common

import (
	"context"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

// RedisLockOptions controls acquisition of a distributed lock.
type RedisLockOptions struct {
	TtlS    int
	Retries int
}

// RedisLock acquires and tracks named locks so callers can release by key.
type RedisLock struct {
	client *redislock.Client
	mu     sync.Mutex
	held   map[string]*redislock.Lock
}

func NewRedisLock(rdb *RedisClient) *RedisLock {
	return &RedisLock{
		client: redislock.New(rdb),
		held:   make(map[string]*redislock.Lock),
	}
}

func (l *RedisLock) Acquire(ctx context.Context, key string, opts RedisLockOptions) error {
	var retry redislock.RetryStrategy
	if opts.Retries > 0 {
		retry = redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), opts.Retries)
	}

	lock, err := l.client.Obtain(ctx, key, time.Duration(opts.TtlS)*time.Second, &redislock.Options{
		RetryStrategy: retry,
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.held[key] = lock
	l.mu.Unlock()
	return nil
}

func (l *RedisLock) Release(key string) error {
	l.mu.Lock()
	lock, ok := l.held[key]
	delete(l.held, key)
	l.mu.Unlock()

	if !ok {
		return nil
	}
	return lock.Release(context.Background())
}
