package strategy

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultPrelude is written before each error by Stderr and Stdout.
const DefaultPrelude = "error: "

// Write renders each error as a line on an io.Writer.
//
// Writes are serialized so that lines from concurrent finalizers never
// interleave. A write failure is returned to the caller.
type Write struct {
	mu      sync.Mutex
	w       io.Writer
	prelude string
	newline bool
}

// WriteOption configures a Write strategy.
type WriteOption func(*Write)

// WithPrelude sets the text written before each error.
func WithPrelude(prelude string) WriteOption {
	return func(w *Write) { w.prelude = prelude }
}

// WithNewline controls whether a newline follows each error. Default: true.
func WithNewline(newline bool) WriteOption {
	return func(w *Write) { w.newline = newline }
}

// NewWrite returns a Write strategy over w.
func NewWrite(w io.Writer, opts ...WriteOption) *Write {
	s := &Write{w: w, newline: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stderr writes errors to os.Stderr prefixed with DefaultPrelude.
func Stderr() *Write {
	return NewWrite(os.Stderr, WithPrelude(DefaultPrelude))
}

// Stdout writes errors to os.Stdout prefixed with DefaultPrelude.
func Stdout() *Write {
	return NewWrite(os.Stdout, WithPrelude(DefaultPrelude))
}

// TryHandle implements FallibleHandler.
func (s *Write) TryHandle(_ context.Context, err error) error {
	line := s.prelude + errorText(err)
	if s.newline {
		line += "\n"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, werr := io.WriteString(s.w, line); werr != nil {
		return fmt.Errorf("strategy: write: %w", werr)
	}
	return nil
}

func errorText(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
