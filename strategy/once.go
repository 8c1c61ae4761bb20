package strategy

import (
	"context"
	"sync"
)

// OnceMode selects what a OnceCell does when it is already occupied.
type OnceMode int

const (
	// OnceIgnore keeps the stored error and drops the new one silently.
	OnceIgnore OnceMode = iota
	// OnceError keeps the stored error and reports the new one as an
	// AlreadyOccupiedError.
	OnceError
)

// OnceCell stores the first error it receives.
//
// It is useful to recover an error from inside a call that finalizes an
// object the caller never sees.
type OnceCell struct {
	mode OnceMode

	mu  sync.Mutex
	err error
	set bool
}

// NewOnceCell returns an empty cell.
func NewOnceCell(mode OnceMode) *OnceCell {
	return &OnceCell{mode: mode}
}

// Handle implements Handler. The new error is dropped if the cell is occupied.
func (c *OnceCell) Handle(ctx context.Context, err error) {
	_ = c.store(err)
}

// TryHandle implements FallibleHandler. In OnceError mode an occupied cell
// yields an AlreadyOccupiedError wrapping err.
func (c *OnceCell) TryHandle(_ context.Context, err error) error {
	if c.store(err) || c.mode == OnceIgnore {
		return nil
	}
	return &AlreadyOccupiedError{Err: err}
}

func (c *OnceCell) store(err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set {
		return false
	}
	c.err, c.set = err, true
	return true
}

// Err returns the stored error, or nil if the cell is empty.
func (c *OnceCell) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Occupied reports whether the cell holds an error.
func (c *OnceCell) Occupied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}

// Take empties the cell and returns what it held.
func (c *OnceCell) Take() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.err
	c.err, c.set = nil, false
	return err
}
