package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/jonwraymond/finalize/observe"
	"github.com/jonwraymond/finalize/redispub"
	"github.com/jonwraymond/finalize/registry"
)

// Strategy kinds accepted in StrategyConfig.Kind.
const (
	KindStderr = "stderr"
	KindStdout = "stdout"
	KindWrite  = "write"
	KindPanic  = "panic"
	KindNoop   = "noop"
	KindExit   = "exit"
	KindAbort  = "abort"
	KindLog    = "log"
	KindRedis  = "redis"
)

// StrategyConfig describes one leaf strategy.
type StrategyConfig struct {
	Kind string `yaml:"kind"`

	// write
	Path    string  `yaml:"path"`
	Prelude *string `yaml:"prelude"`
	Newline *bool   `yaml:"newline"`

	// panic, log
	Message string `yaml:"message"`

	// exit
	Code int `yaml:"code"`

	// log
	Level string `yaml:"level"`
	Color bool   `yaml:"color"`

	// redis
	Redis redispub.Config `yaml:"redis"`
}

// ShimConfig holds the terminal policies used when neither the local nor
// the global slot is installed.
type ShimConfig struct {
	PrimaryOnUninit  string `yaml:"primary_on_uninit"`
	FallbackOnUninit string `yaml:"fallback_on_uninit"`
}

// RetryConfig enables redelivery when MaxAttempts > 1.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Backoff      string        `yaml:"backoff"`
	Jitter       bool          `yaml:"jitter"`
}

// CircuitBreakerConfig enables a breaker when MaxFailures > 0.
type CircuitBreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// RateLimitConfig enables a limiter when Rate > 0.
type RateLimitConfig struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// ResilienceConfig decorates the primary strategy.
type ResilienceConfig struct {
	Retry          RetryConfig          `yaml:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	MaxConcurrent  int                  `yaml:"max_concurrent"`
	Timeout        time.Duration        `yaml:"timeout"`
}

// Config is the top-level document.
type Config struct {
	Primary    *StrategyConfig    `yaml:"primary"`
	Fallback   *StrategyConfig    `yaml:"fallback"`
	Shim       ShimConfig       `yaml:"shim"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Observe    observe.Config   `yaml:"observe"`
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored. With no
// arguments it reads ".env".
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads a YAML file, expanding environment variables first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Primary == nil {
		c.Primary = &StrategyConfig{Kind: KindStderr}
	}
	if c.Fallback == nil {
		c.Fallback = &StrategyConfig{Kind: KindPanic}
	}
	if c.Shim.PrimaryOnUninit == "" {
		c.Shim.PrimaryOnUninit = registry.PolicyUseDefault.String()
	}
	if c.Shim.FallbackOnUninit == "" {
		c.Shim.FallbackOnUninit = registry.PolicyUseDefault.String()
	}
	if c.Observe.ServiceName == "" {
		c.Observe.ServiceName = "finalize"
	}
}

// Validate checks the document without connecting to anything.
func (c *Config) Validate() error {
	if c.Primary != nil {
		if err := c.Primary.validate(); err != nil {
			return fmt.Errorf("primary: %w", err)
		}
	}
	if c.Fallback != nil {
		if err := c.Fallback.validate(); err != nil {
			return fmt.Errorf("fallback: %w", err)
		}
		if c.Fallback.Kind == KindRedis {
			return fmt.Errorf("fallback: %w: %s", ErrFallibleFallback, c.Fallback.Kind)
		}
	}

	if _, err := registry.ParsePolicy(c.Shim.PrimaryOnUninit); err != nil {
		return fmt.Errorf("shim.primary_on_uninit: %w", err)
	}
	p, err := registry.ParsePolicy(c.Shim.FallbackOnUninit)
	if err != nil {
		return fmt.Errorf("shim.fallback_on_uninit: %w", err)
	}
	if p == registry.PolicyError {
		return fmt.Errorf("shim.fallback_on_uninit: %w", ErrFallibleFallback)
	}

	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	return nil
}

func (s *StrategyConfig) validate() error {
	switch s.Kind {
	case KindStderr, KindStdout, KindWrite, KindPanic, KindNoop, KindExit, KindAbort:
		return nil
	case KindLog:
		_, err := parseLevel(s.Level)
		return err
	case KindRedis:
		if s.Redis.URL == "" {
			return ErrMissingRedisURL
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error", "":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}
