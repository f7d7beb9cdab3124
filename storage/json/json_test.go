package storejson

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blockhost/vmlease/lock/flock"
)

// snapshot is a minimal Initer-implementing index for store tests.
type snapshot struct {
	Counter int               `json:"counter"`
	Entries map[string]string `json:"entries"`
}

func (s *snapshot) Init() {
	if s.Entries == nil {
		s.Entries = make(map[string]string)
	}
}

func newTestStore(t *testing.T) (*Store[snapshot], string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	locker := flock.New(filepath.Join(dir, "db.lock"), time.Second)
	return New[snapshot](path, locker), path
}

func TestStore_InitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if err := store.Initialize(ctx, &snapshot{Counter: 7}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// A second Initialize must not reset existing state.
	if err := store.Update(ctx, func(s *snapshot) error {
		s.Counter++
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Initialize(ctx, &snapshot{Counter: 7}); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}

	var got int
	if err := store.With(ctx, func(s *snapshot) error {
		got = s.Counter
		return nil
	}); err != nil {
		t.Fatalf("with: %v", err)
	}
	if got != 8 {
		t.Errorf("expected counter 8 after re-initialize, got %d", got)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	if err := store.Initialize(ctx, &snapshot{}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := store.Update(ctx, func(s *snapshot) error {
		s.Counter = 42
		s.Entries["a"] = "b"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.With(ctx, func(s *snapshot) error {
		if s.Counter != 42 || s.Entries["a"] != "b" {
			t.Errorf("round trip lost state: %+v", s)
		}
		return nil
	}); err != nil {
		t.Fatalf("with: %v", err)
	}
}

func TestStore_MissingFileIsFatal(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	err := store.With(ctx, func(*snapshot) error { return nil })
	if err == nil {
		t.Fatal("expected error reading a store that was never initialized")
	}
}

func TestStore_CorruptFileIsFatal(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if err := store.With(ctx, func(*snapshot) error { return nil }); err == nil {
		t.Fatal("expected parse error for corrupt store")
	}
	if err := store.Update(ctx, func(*snapshot) error { return nil }); err == nil {
		t.Fatal("expected parse error for corrupt store on update")
	}
}

func TestStore_UpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	if err := store.Initialize(ctx, &snapshot{Counter: 1}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	boom := errors.New("boom")
	err := store.Update(ctx, func(s *snapshot) error {
		s.Counter = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutation error to propagate, got %v", err)
	}

	if err := store.With(ctx, func(s *snapshot) error {
		if s.Counter != 1 {
			t.Errorf("failed update must not persist, counter = %d", s.Counter)
		}
		return nil
	}); err != nil {
		t.Fatalf("with: %v", err)
	}
}

func TestStore_ReaderMutationsDoNotPersist(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	if err := store.Initialize(ctx, &snapshot{Counter: 1}); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := store.With(ctx, func(s *snapshot) error {
		s.Counter = 99
		return nil
	}); err != nil {
		t.Fatalf("with: %v", err)
	}
	if err := store.With(ctx, func(s *snapshot) error {
		if s.Counter != 1 {
			t.Errorf("reader mutation leaked into the store, counter = %d", s.Counter)
		}
		return nil
	}); err != nil {
		t.Fatalf("with: %v", err)
	}
}
