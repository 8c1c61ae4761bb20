package health

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonwraymond/finalize/registry"
	"github.com/jonwraymond/finalize/resilience"
)

// Flagger is implemented by handlers using registry.PolicyFlag, such as
// handler.Primary and handler.PrimaryShim.
type Flagger interface {
	LastResolutionFailed() bool
}

// RegistryCheckerConfig configures a RegistryChecker.
type RegistryCheckerConfig struct {
	// Globals is the registry to inspect. Default: registry.Process().
	Globals *registry.Globals

	// PrimaryPolicy and FallbackPolicy are the uninitialized-slot policies
	// the process resolves with. They decide how bad an empty slot is; the
	// zero value is registry.PolicyError.
	PrimaryPolicy  registry.Policy
	FallbackPolicy registry.Policy

	// Flaggers are reported degraded while their last resolution failed.
	Flaggers map[string]Flagger
}

// RegistryChecker reports whether finalizer errors can currently be routed.
type RegistryChecker struct {
	config RegistryCheckerConfig
}

// NewRegistryChecker creates a RegistryChecker.
func NewRegistryChecker(config RegistryCheckerConfig) *RegistryChecker {
	if config.Globals == nil {
		config.Globals = registry.Process()
	}
	return &RegistryChecker{config: config}
}

// Name returns "registry".
func (c *RegistryChecker) Name() string { return "registry" }

// Check inspects both global slots and every flagger.
func (c *RegistryChecker) Check(ctx context.Context) Result {
	g := c.config.Globals
	status := StatusHealthy
	details := map[string]any{
		"primary.installed":  g.Primary.Loaded(),
		"fallback.installed": g.Fallback.Loaded(),
	}

	var problems []string
	for _, slot := range []struct {
		role   registry.Role
		loaded bool
		policy registry.Policy
	}{
		{registry.Primary, g.Primary.Loaded(), c.config.PrimaryPolicy},
		{registry.Fallback, g.Fallback.Loaded(), c.config.FallbackPolicy},
	} {
		if slot.loaded {
			continue
		}
		s := emptySlotStatus(slot.policy)
		if s != StatusHealthy {
			problems = append(problems, fmt.Sprintf("global %s handler not installed (policy %s)", slot.role, slot.policy))
		}
		status = status.Worst(s)
	}

	names := make([]string, 0, len(c.config.Flaggers))
	for name := range c.config.Flaggers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		failed := c.config.Flaggers[name].LastResolutionFailed()
		details[name+".last_resolution_failed"] = failed
		if failed {
			problems = append(problems, name+" fell back to its secondary handler")
			status = status.Worst(StatusDegraded)
		}
	}

	var r Result
	switch status {
	case StatusHealthy:
		r = Healthy("finalizer errors are routable")
	case StatusDegraded:
		r = Degraded(problems[0])
	default:
		r = Unhealthy(problems[0], fmt.Errorf("%w: %w", ErrHandlerMissing, registry.ErrUninitialized))
	}
	return r.WithDetails(details)
}

func emptySlotStatus(p registry.Policy) Status {
	switch p {
	case registry.PolicyUseDefault:
		return StatusHealthy
	case registry.PolicyError, registry.PolicyPanic:
		return StatusUnhealthy
	default:
		return StatusDegraded
	}
}

// NewBreakerChecker reports a resilience.CircuitBreaker guarding a strategy:
// open is degraded because errors are going to the fallback. An open
// circuit's Result.Error is resilience.ErrCircuitOpen.
func NewBreakerChecker(name string, cb *resilience.CircuitBreaker) *CheckerFunc {
	return NewCheckerFunc(name, func(context.Context) Result {
		stats := cb.Stats()
		details := map[string]any{
			"state":    stats.State.String(),
			"failures": stats.Failures,
		}
		if stats.State == resilience.StateClosed {
			return Healthy("circuit closed").WithDetails(details)
		}
		r := Degraded("circuit " + stats.State.String()).WithDetails(details)
		if stats.State == resilience.StateOpen {
			r.Error = resilience.ErrCircuitOpen
		}
		return r
	})
}
