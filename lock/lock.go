package lock

import "context"

// Locker provides cross-process mutual exclusion with context support.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// RLocker additionally provides a shared (read) mode: concurrent readers are
// allowed, but readers and the exclusive holder are mutually exclusive.
type RLocker interface {
	Locker
	RLock(ctx context.Context) error
	RUnlock(ctx context.Context) error
}

// WithLock acquires the exclusive lock, calls fn, and releases the lock.
// If fn returns an error, the lock is still released.
func WithLock(ctx context.Context, l Locker, fn func() error) error {
	if err := l.Lock(ctx); err != nil {
		return err
	}
	defer l.Unlock(ctx) //nolint:errcheck
	return fn()
}

// WithRLock acquires the shared lock, calls fn, and releases the lock.
func WithRLock(ctx context.Context, l RLocker, fn func() error) error {
	if err := l.RLock(ctx); err != nil {
		return err
	}
	defer l.RUnlock(ctx) //nolint:errcheck
	return fn()
}
