// Package storage defines the snapshot store contract shared by the
// file-backed and in-memory registry backends. The whole snapshot is the
// unit of locking: every mutation is one read-modify-write critical section,
// so two concurrent writers serialize and the second always observes the
// first writer's committed state.
package storage

import "context"

// Initer is implemented by snapshot types that need their nil collections
// seeded after decoding. Called automatically by the backends.
type Initer interface {
	Init()
}

// Store provides locked access to a snapshot of type I.
type Store[I any] interface {
	// With loads the snapshot under a shared lock and calls fn with it.
	// Mutations made by fn are NOT persisted.
	With(ctx context.Context, fn func(*I) error) error

	// Update loads the snapshot under an exclusive lock, calls fn, and
	// persists the mutated snapshot. If fn returns an error nothing is
	// written.
	Update(ctx context.Context, fn func(*I) error) error
}
