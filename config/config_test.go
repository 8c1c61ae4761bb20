package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonwraymond/finalize/observe"
	"github.com/jonwraymond/finalize/registry"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_REDIS_URL", "redis://localhost:6379/2")

	path := writeFile(t, "finalize.yaml", `
primary:
  kind: redis
  redis:
    url: ${TEST_REDIS_URL}
    channel: errs
fallback:
  kind: log
  level: warn
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Primary.Redis.URL != "redis://localhost:6379/2" {
		t.Errorf("Expected URL redis://localhost:6379/2, got %s", cfg.Primary.Redis.URL)
	}
	if cfg.Primary.Redis.Channel != "errs" {
		t.Errorf("Channel = %q, want errs", cfg.Primary.Redis.Channel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrNotExist", err)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Primary.Kind != KindStderr {
		t.Errorf("Primary.Kind = %q, want stderr", cfg.Primary.Kind)
	}
	if cfg.Fallback.Kind != KindPanic {
		t.Errorf("Fallback.Kind = %q, want panic", cfg.Fallback.Kind)
	}
	if cfg.Shim.PrimaryOnUninit != "use_default" || cfg.Shim.FallbackOnUninit != "use_default" {
		t.Errorf("Shim = %+v, want use_default", cfg.Shim)
	}
	if cfg.Observe.ServiceName != "finalize" {
		t.Errorf("Observe.ServiceName = %q, want finalize", cfg.Observe.ServiceName)
	}
}

func TestParse_Resilience(t *testing.T) {
	cfg, err := Parse([]byte(`
resilience:
  retry:
    max_attempts: 4
    initial_delay: 50ms
    backoff: linear
  circuit_breaker:
    max_failures: 2
    reset_timeout: 1m
  rate_limit:
    rate: 20
    burst: 5
  max_concurrent: 8
  timeout: 2s
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	r := cfg.Resilience
	if r.Retry.MaxAttempts != 4 || r.Retry.InitialDelay != 50*time.Millisecond || r.Retry.Backoff != "linear" {
		t.Errorf("Retry = %+v", r.Retry)
	}
	if r.CircuitBreaker.ResetTimeout != time.Minute {
		t.Errorf("ResetTimeout = %v, want 1m", r.CircuitBreaker.ResetTimeout)
	}
	if r.RateLimit.Rate != 20 || r.RateLimit.Burst != 5 || r.MaxConcurrent != 8 || r.Timeout != 2*time.Second {
		t.Errorf("Resilience = %+v", r)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown kind", "primary: {kind: carrier-pigeon}", ErrUnknownKind},
		{"redis without url", "primary: {kind: redis}", ErrMissingRedisURL},
		{"redis fallback", "fallback: {kind: redis, redis: {url: 'redis://x'}}", ErrFallibleFallback},
		{"bad log level", "fallback: {kind: log, level: loud}", ErrInvalidLevel},
		{"bad policy", "shim: {primary_on_uninit: maybe}", registry.ErrUnknownPolicy},
		{"error fallback policy", "shim: {fallback_on_uninit: error}", ErrFallibleFallback},
		{"bad observe", "observe: {tracing: {enabled: true, exporter: zipkin}}", observe.ErrInvalidTracingExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("primary: [")); err == nil {
		t.Error("Parse() error = nil, want parse error")
	}
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, ".env", "FINALIZE_TEST_CHANNEL=from-dotenv\n")
	t.Setenv("FINALIZE_TEST_CHANNEL", "")
	os.Unsetenv("FINALIZE_TEST_CHANNEL")

	if err := LoadEnv(path, filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("FINALIZE_TEST_CHANNEL"); got != "from-dotenv" {
		t.Errorf("FINALIZE_TEST_CHANNEL = %q, want from-dotenv", got)
	}
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	path := writeFile(t, ".env", "FINALIZE_TEST_LEVEL=debug\n")
	t.Setenv("FINALIZE_TEST_LEVEL", "error")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("FINALIZE_TEST_LEVEL"); got != "error" {
		t.Errorf("FINALIZE_TEST_LEVEL = %q, want error", got)
	}
}
