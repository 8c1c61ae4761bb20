package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/finalize/health"
	"github.com/jonwraymond/finalize/registry"
)

func ExampleRegistryChecker() {
	g := registry.NewGlobals()

	checker := health.NewRegistryChecker(health.RegistryCheckerConfig{
		Globals:        g,
		PrimaryPolicy:  registry.PolicyUseDefault,
		FallbackPolicy: registry.PolicyPanic,
	})

	r := checker.Check(context.Background())
	fmt.Println(r.Status, "-", r.Message)
	// Output:
	// unhealthy - global fallback handler not installed (policy panic)
}
