// Package storejson persists a snapshot as a single JSON document guarded by
// an advisory file lock, so independent CLI processes on the same host never
// observe a torn or partially written registry.
package storejson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blockhost/vmlease/lock"
	"github.com/blockhost/vmlease/storage"
)

// compile-time interface check happens at the instantiation sites.

// Store is a file-backed storage.Store[I].
type Store[I any] struct {
	path   string
	locker lock.RLocker
}

// New creates a Store for the given path. The file is not touched until
// Initialize or the first operation.
func New[I any](path string, locker lock.RLocker) *Store[I] {
	return &Store[I]{path: path, locker: locker}
}

// Initialize writes the seed snapshot iff no store file exists yet.
// A store that exists but cannot be parsed is left alone; the next read
// reports the corruption instead of silently resetting state.
func (s *Store[I]) Initialize(ctx context.Context, seed *I) error {
	return lock.WithLock(ctx, s.locker, func() error {
		if _, err := os.Stat(s.path); err == nil {
			return nil
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", s.path, err)
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
		return s.write(seed)
	})
}

// With implements storage.Store. The shared lock admits concurrent readers
// but excludes writers.
func (s *Store[I]) With(ctx context.Context, fn func(*I) error) error {
	var snap *I
	if err := lock.WithRLock(ctx, s.locker, func() (err error) {
		snap, err = s.read()
		return err
	}); err != nil {
		return err
	}
	return fn(snap)
}

// Update implements storage.Store. Read, mutate, and write happen inside one
// exclusive critical section; the write commits via temp file + rename so a
// crash mid-write leaves the previous snapshot intact.
func (s *Store[I]) Update(ctx context.Context, fn func(*I) error) error {
	return lock.WithLock(ctx, s.locker, func() error {
		snap, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
		return s.write(snap)
	})
}

// read loads and decodes the snapshot. A missing or corrupt file is a hard
// error: proceeding on unreadable state risks double allocation.
func (s *Store[I]) read() (*I, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}
	snap := new(I)
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", s.path, err)
	}
	if it, ok := any(snap).(storage.Initer); ok {
		it.Init()
	}
	return snap, nil
}

func (s *Store[I]) write(snap *I) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit store %s: %w", s.path, err)
	}
	return nil
}
