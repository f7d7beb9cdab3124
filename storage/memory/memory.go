// Package memstore is the in-memory storage.Store backend used by the mock
// registry. It exists for deterministic tests and --mock runs; it is the only
// backend allowed to start from an empty snapshot.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/blockhost/vmlease/storage"
)

// Store is an in-memory storage.Store[I].
type Store[I any] struct {
	mu   sync.RWMutex
	snap *I
}

// New creates a Store seeded with the given snapshot.
func New[I any](seed *I) *Store[I] {
	if it, ok := any(seed).(storage.Initer); ok {
		it.Init()
	}
	return &Store[I]{snap: seed}
}

// With implements storage.Store. fn receives a detached deep copy, matching
// the file backend where reader mutations never reach the store.
func (s *Store[I]) With(_ context.Context, fn func(*I) error) error {
	s.mu.RLock()
	snap, err := clone(s.snap)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return fn(snap)
}

// Update implements storage.Store. The mutation is applied to a copy and
// swapped in only when fn succeeds, mirroring the file backend's
// all-or-nothing commit.
func (s *Store[I]) Update(_ context.Context, fn func(*I) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := clone(s.snap)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	s.snap = snap
	return nil
}

// clone deep-copies via the same JSON codec the file backend uses, so both
// backends agree on what survives a round-trip.
func clone[I any](in *I) (*I, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("clone snapshot: %w", err)
	}
	out := new(I)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("clone snapshot: %w", err)
	}
	if it, ok := any(out).(storage.Initer); ok {
		it.Init()
	}
	return out, nil
}
