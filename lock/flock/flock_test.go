package flock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLock_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.lock")

	l := New(path, time.Second)
	if err := l.Lock(ctx); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := l.Unlock(ctx); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	// Reacquire after release.
	if err := l.Lock(ctx); err != nil {
		t.Fatalf("relock: %v", err)
	}
	_ = l.Unlock(ctx)
}

func TestLock_SharedHoldersCoexist(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.lock")

	r1 := New(path, time.Second)
	r2 := New(path, time.Second)
	if err := r1.RLock(ctx); err != nil {
		t.Fatalf("first rlock: %v", err)
	}
	if err := r2.RLock(ctx); err != nil {
		t.Fatalf("second rlock should coexist: %v", err)
	}
	_ = r1.RUnlock(ctx)
	_ = r2.RUnlock(ctx)
}

func TestLock_ExclusiveTimesOutAgainstHolder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.lock")

	holder := New(path, time.Second)
	if err := holder.Lock(ctx); err != nil {
		t.Fatalf("holder lock: %v", err)
	}
	t.Cleanup(func() { _ = holder.Unlock(ctx) })

	waiter := New(path, 300*time.Millisecond)
	start := time.Now()
	err := waiter.Lock(ctx)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("timed out too early: %s", elapsed)
	}
}

func TestLock_ReaderBlocksWriter(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.lock")

	reader := New(path, time.Second)
	if err := reader.RLock(ctx); err != nil {
		t.Fatalf("rlock: %v", err)
	}
	t.Cleanup(func() { _ = reader.RUnlock(ctx) })

	writer := New(path, 200*time.Millisecond)
	if err := writer.Lock(ctx); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout for writer against reader, got %v", err)
	}
}
