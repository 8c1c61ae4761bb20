package strategy

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
)

// DefaultPanicMessage is the message used by a Panic with no message set.
const DefaultPanicMessage = "error occurred when finalizing an object"

// Noop drops every error.
type Noop struct{}

// Handle implements Handler.
func (Noop) Handle(context.Context, error) {}

// Panic panics with a *PanicError carrying Message and the error.
type Panic struct {
	Message string
}

// NewPanic returns a Panic strategy. An empty message selects DefaultPanicMessage.
func NewPanic(message string) *Panic {
	if message == "" {
		message = DefaultPanicMessage
	}
	return &Panic{Message: message}
}

// Handle implements Handler.
func (p *Panic) Handle(_ context.Context, err error) {
	msg := p.Message
	if msg == "" {
		msg = DefaultPanicMessage
	}
	panic(&PanicError{Message: msg, Err: err})
}

// Unreachable marks finalizer errors as impossible. Reaching it is a bug.
type Unreachable struct{}

// Handle implements Handler.
func (Unreachable) Handle(_ context.Context, err error) {
	panic(&PanicError{Message: "strategy: reached a finalizer error declared unreachable", Err: err})
}

// DefaultExitCode is the status used by an Exit with no code set.
const DefaultExitCode = 1

// Exit terminates the process with Code.
type Exit struct {
	Code int

	exit func(int)
}

// NewExit returns an Exit strategy with the given status code.
func NewExit(code int) *Exit {
	return &Exit{Code: code}
}

// DefaultExit returns an Exit strategy using DefaultExitCode.
func DefaultExit() *Exit {
	return NewExit(DefaultExitCode)
}

// Handle implements Handler.
func (e *Exit) Handle(context.Context, error) {
	exitWith(e.exit, e.Code)
}

// Abort dumps the current goroutine's stack and the error to stderr, then
// terminates the process with status 2.
type Abort struct {
	exit func(int)
}

// Handle implements Handler.
func (a *Abort) Handle(_ context.Context, err error) {
	fmt.Fprintf(os.Stderr, "fatal: finalizer error: %v\n\n%s", err, debug.Stack())
	exitWith(a.exit, 2)
}

func exitWith(fn func(int), code int) {
	if fn == nil {
		fn = os.Exit
	}
	fn(code)
}
