// Package lock provides the mutual exclusion used to keep two runs of the same
// payroll batch from overlapping.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrLockHeld = errors.New("lock is held by another owner")

// Locker acquires a named lock for at most ttl. The returned release func is
// safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// LocalLocker is an in-process Locker for single-instance deployments and tests.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	nowFn func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return nil, ErrLockHeld
	}

	expiresAt := now.Add(ttl)
	l.held[key] = expiresAt

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// only release our own acquisition, not one taken after expiry
			if l.held[key].Equal(expiresAt) {
				delete(l.held, key)
			}
		})
		return nil
	}, nil
}
