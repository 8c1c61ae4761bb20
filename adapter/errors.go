package adapter

import "errors"

// ErrFinalizedTwice is the panic value of a repeated Finalize on an adapter
// that panics on repeat.
var ErrFinalizedTwice = errors.New("adapter: tried to finalize object twice")
