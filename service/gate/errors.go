package gate

import "errors"

var (
	// ErrNoExecutor is returned by ExecuteNext when no dispatch callback has
	// been configured.
	ErrNoExecutor = errors.New("no executor configured")

	// ErrQueueBlocked is returned when the head of the approved queue carries
	// a recorded execution error.  The queue never advances past such a
	// record – an operator must resolve or release it first.
	ErrQueueBlocked = errors.New("approval queue blocked by failed execution")
)
