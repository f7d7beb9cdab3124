package memstore

import (
	"context"
	"errors"
	"testing"
)

type snapshot struct {
	Counter int               `json:"counter"`
	Entries map[string]string `json:"entries"`
}

func (s *snapshot) Init() {
	if s.Entries == nil {
		s.Entries = make(map[string]string)
	}
}

func TestStore_UpdateCommits(t *testing.T) {
	ctx := context.Background()
	store := New(&snapshot{})

	if err := store.Update(ctx, func(s *snapshot) error {
		s.Counter = 5
		s.Entries["k"] = "v"
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.With(ctx, func(s *snapshot) error {
		if s.Counter != 5 || s.Entries["k"] != "v" {
			t.Errorf("update not visible: %+v", s)
		}
		return nil
	}); err != nil {
		t.Fatalf("with: %v", err)
	}
}

func TestStore_UpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	store := New(&snapshot{Counter: 1})

	boom := errors.New("boom")
	if err := store.Update(ctx, func(s *snapshot) error {
		s.Counter = 99
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_ = store.With(ctx, func(s *snapshot) error {
		if s.Counter != 1 {
			t.Errorf("aborted update leaked, counter = %d", s.Counter)
		}
		return nil
	})
}

func TestStore_WithReceivesDetachedCopy(t *testing.T) {
	ctx := context.Background()
	store := New(&snapshot{Counter: 1})

	_ = store.With(ctx, func(s *snapshot) error {
		s.Counter = 99
		s.Entries["leak"] = "x"
		return nil
	})
	_ = store.With(ctx, func(s *snapshot) error {
		if s.Counter != 1 || len(s.Entries) != 0 {
			t.Errorf("reader mutation leaked: %+v", s)
		}
		return nil
	})
}
