package moodcheck

import (
	"context"
	"sync"
	"time"
)

const pollLockName = "reply-poll"

// PollLock serializes reply polls. TryAcquire never waits; ok is false when
// another poll holds the lock.
type PollLock interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// LocalLock is an in-process PollLock for single-instance deployments.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: map[string]time.Time{}}
}

func (l *LocalLock) TryAcquire(_ context.Context, name string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if exp, ok := l.held[name]; ok && now.Before(exp) {
		return nil, false, nil
	}
	exp := now.Add(ttl)
	l.held[name] = exp
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[name].Equal(exp) {
				delete(l.held, name)
			}
		})
	}, true, nil
}
