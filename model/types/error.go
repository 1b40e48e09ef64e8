package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the orchestration services.  Callers detect
// conditions via errors.Is rather than string comparison.
var (
	// ErrInvalidArgument indicates malformed input to a creation call.  It is
	// never retried automatically.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState indicates an operation attempted against a record in
	// the wrong lifecycle state.  The caller must re-read state and decide.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound indicates an unknown record id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExpired indicates an approval past its deadline.  Expiration
	// is resolved only through the sweep path.
	ErrAlreadyExpired = errors.New("approval already expired")

	// ErrMaxIterationsExceeded is the task-specific terminal failure raised
	// when an advance would exceed the iteration bound.
	ErrMaxIterationsExceeded = errors.New("max iterations exceeded")

	// ErrExecution indicates that dispatch of an approved action failed.  The
	// failure is recorded on the approval record and is not retried
	// automatically.
	ErrExecution = errors.New("execution failed")
)

func NewInvalidArgumentError(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, detail)
}

func NewInvalidStateError(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, detail)
}

func NewNotFoundError(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
