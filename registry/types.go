package registry

import (
	"fmt"
	"strings"
)

// Scope is where a slot lives.
type Scope int

const (
	// Global slots are shared by the process.
	Global Scope = iota
	// Local slots are carried by a context.
	Local
)

func (s Scope) String() string {
	switch s {
	case Global:
		return "global"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// Role is which half of a chain a slot feeds.
type Role int

const (
	// Primary slots hold the fallible first handler.
	Primary Role = iota
	// Fallback slots hold the infallible handler for primary failures.
	Fallback
)

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Policy decides what a handler does when its slot is empty.
type Policy int

const (
	// PolicyError reports an UninitializedError.
	PolicyError Policy = iota
	// PolicyPanic panics with the UninitializedError.
	PolicyPanic
	// PolicyUseDefault installs the library default and uses it.
	PolicyUseDefault
	// PolicyFlag raises an observable flag and defers to a secondary handler.
	PolicyFlag
	// PolicyIgnore silently succeeds. Only meaningful as a terminal policy.
	PolicyIgnore
)

func (p Policy) String() string {
	switch p {
	case PolicyError:
		return "error"
	case PolicyPanic:
		return "panic"
	case PolicyUseDefault:
		return "use_default"
	case PolicyFlag:
		return "flag"
	case PolicyIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the String form of a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return PolicyError, nil
	case "panic":
		return PolicyPanic, nil
	case "use_default", "default", "":
		return PolicyUseDefault, nil
	case "flag":
		return PolicyFlag, nil
	case "ignore":
		return PolicyIgnore, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
