package flock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/blockhost/vmlease/lock"
)

const retryDelay = 100 * time.Millisecond

// ErrTimeout is returned when the lock cannot be acquired within the
// configured wait. Callers should treat it as a store I/O failure rather
// than retry blindly.
var ErrTimeout = errors.New("flock: acquire timed out")

// compile-time interface check.
var _ lock.RLocker = (*Lock)(nil)

// Lock provides cross-process mutual exclusion using flock(2) via gofrs/flock.
// Registry readers take the shared mode, writers the exclusive mode. Lock
// files are long-lived and never deleted after use.
type Lock struct {
	fl      *flock.Flock
	timeout time.Duration
}

// New creates a Lock for the given path. A non-positive timeout means the
// acquire waits until the context is done.
func New(path string, timeout time.Duration) *Lock {
	return &Lock{fl: flock.New(path), timeout: timeout}
}

// Lock acquires the exclusive flock, waiting at most the configured timeout.
func (l *Lock) Lock(ctx context.Context) error {
	return l.acquire(ctx, l.fl.TryLockContext)
}

// RLock acquires the shared flock, waiting at most the configured timeout.
func (l *Lock) RLock(ctx context.Context) error {
	return l.acquire(ctx, l.fl.TryRLockContext)
}

// Unlock releases the flock.
func (l *Lock) Unlock(_ context.Context) error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release flock %s: %w", l.fl.Path(), err)
	}
	return nil
}

// RUnlock releases the shared flock. flock(2) has a single unlock operation.
func (l *Lock) RUnlock(ctx context.Context) error { return l.Unlock(ctx) }

func (l *Lock) acquire(ctx context.Context, try func(context.Context, time.Duration) (bool, error)) error {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	locked, err := try(ctx, retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %s", ErrTimeout, l.fl.Path(), l.timeout)
		}
		return fmt.Errorf("acquire flock %s: %w", l.fl.Path(), err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire flock %s: context done", l.fl.Path())
	}
	return nil
}
