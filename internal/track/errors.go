package track

import (
	"errors"
	"fmt"
)

// InvalidTransitionError reports a session action that is not legal given the
// current snapshot. It is always recoverable; Reason is machine-readable and
// suitable for rendering to the user as-is.
type InvalidTransitionError struct {
	Op     string // "start", "pause", "resume", "end"
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
}

// IsInvalidTransition reports whether err is (or wraps) an
// InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// ErrStaleState indicates the local snapshot disagreed with the store on a
// refresh attempt. Recovered by refetching; only surfaced when the refetch
// itself fails.
var ErrStaleState = errors.New("session snapshot is stale")

// ErrAborted is returned by the guard when the user declines to start or
// resume a session before a protected action.
var ErrAborted = errors.New("action aborted")

// TransportError wraps a failed store call (I/O, network). The engine never
// retries these itself; callers may.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("session store %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
