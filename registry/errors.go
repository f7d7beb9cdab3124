package registry

import "errors"

// Expected, recoverable conditions callers branch on with errors.Is.
// Store and lock failures are returned wrapped instead; those are fatal for
// the operation and must never be swallowed.
var (
	// ErrNotFound: operation on an unknown VM name or token id.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists: duplicate VM name (any status) or identity clash on register.
	ErrAlreadyExists = errors.New("already exists")
	// ErrRangeExhausted: the VMID counter ran past the configured range end.
	ErrRangeExhausted = errors.New("VMID range exhausted")
	// ErrPoolExhausted: no free address left in the IPv4 pool. Expected and
	// recoverable: callers stop and alert an operator, or retry later.
	ErrPoolExhausted = errors.New("IP pool exhausted")
	// ErrInvalidTransition: illegal state-machine move, e.g. resuming a VM
	// that is not suspended or resolving an already-terminal token.
	ErrInvalidTransition = errors.New("invalid transition")
)
