package strategy

import (
	"errors"
	"fmt"
)

// Sentinel errors for strategy operations.
var (
	// ErrNoReceivers is returned by a Broadcast in NeedsReceivers mode when
	// nobody is subscribed.
	ErrNoReceivers = errors.New("strategy: no receivers to broadcast to")

	// ErrSendTimeout is returned when a subscriber did not drain its channel in time.
	ErrSendTimeout = errors.New("strategy: timed out broadcasting to a receiver")

	// ErrOccupied matches every AlreadyOccupiedError.
	ErrOccupied = errors.New("strategy: cell already occupied")
)

// AlreadyOccupiedError is returned by a OnceCell in OnceError mode when it
// already holds an error. Err is the rejected error, not the stored one.
type AlreadyOccupiedError struct {
	Err error
}

func (e *AlreadyOccupiedError) Error() string {
	return fmt.Sprintf("strategy: an error is already stored in this cell (rejected: %v)", e.Err)
}

// Unwrap returns the rejected error.
func (e *AlreadyOccupiedError) Unwrap() error { return e.Err }

// Is reports whether target is ErrOccupied.
func (e *AlreadyOccupiedError) Is(target error) bool { return target == ErrOccupied }

// PanicError is the value passed to panic by the Panic and Unreachable strategies.
type PanicError struct {
	Message string
	Err     error
}

func (e *PanicError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *PanicError) Unwrap() error { return e.Err }
