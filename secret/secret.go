package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Prefix marks a secret reference.
const Prefix = "secretref:"

var (
	// ErrUnknownProvider indicates a reference to an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider is not registered")

	// ErrNotFound indicates the provider has no value for the reference.
	ErrNotFound = errors.New("secret: not found")
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// Resolver replaces secret references using registered providers.
type Resolver struct {
	providers map[string]Provider
}

// NewResolver creates a resolver. With no providers it knows "env" and
// "file".
func NewResolver(providers ...Provider) *Resolver {
	if len(providers) == 0 {
		providers = []Provider{Env{}, File{}}
	}
	r := &Resolver{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// ParseRef splits a full reference "secretref:<provider>:<ref>".
func ParseRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, Prefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

var inlineRef = regexp.MustCompile(`secretref:([^:\s]+):([^\s@]+)`)

// Resolve replaces every reference in value. Values without references are
// returned unchanged. A nil Resolver returns value unchanged.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if r == nil || !strings.Contains(value, Prefix) {
		return value, nil
	}
	if provider, ref, ok := ParseRef(value); ok && !strings.ContainsAny(ref, " \t@") {
		return r.lookup(ctx, provider, ref)
	}

	var firstErr error
	out := inlineRef.ReplaceAllStringFunc(value, func(m string) string {
		sub := inlineRef.FindStringSubmatch(m)
		v, err := r.lookup(ctx, sub[1], sub[2])
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, provider, ref string) (string, error) {
	p, ok := r.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	v, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret: %s: %w", provider, err)
	}
	return v, nil
}

// Env resolves references against the process environment.
type Env struct{}

// Name returns "env".
func (Env) Name() string { return "env" }

// Resolve returns the variable named ref.
func (Env) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, ref)
	}
	return v, nil
}

// File resolves references by reading a file, as mounted by container
// orchestrators. Surrounding whitespace is trimmed.
type File struct{}

// Name returns "file".
func (File) Name() string { return "file" }

// Resolve returns the trimmed contents of the file at ref.
func (File) Resolve(_ context.Context, ref string) (string, error) {
	data, err := os.ReadFile(ref)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
