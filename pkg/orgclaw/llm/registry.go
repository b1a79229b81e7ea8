package llm

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// envKeyPrefix is the environment contract for provider keys, kept for
// compatibility with existing deployments of the predecessor system:
// NANOBOT_PROVIDERS__<NAME>__API_KEY.
const envKeyPrefix = "NANOBOT_PROVIDERS__"

// KeySource resolves an API key for a named provider, e.g. the OS keyring
// or the encrypted vault. Env vars always win.
type KeySource interface {
	ProviderKey(name string) (string, error)
}

// Registry holds the configured providers and routes profile calls.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	// byProfile maps a profile to its provider name.
	byProfile map[Profile]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		byProfile: make(map[Profile]string),
	}
}

// Register adds a provider under its name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Bind routes a profile to a named provider.
func (r *Registry) Bind(profile Profile, providerName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byProfile[profile] = providerName
}

// ForProfile returns the provider bound to a profile, falling back to any
// registered provider when unbound.
func (r *Registry) ForProfile(profile Profile) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.byProfile[profile]; ok {
		if p, ok := r.providers[name]; ok {
			return p, nil
		}
	}
	// Deterministic fallback: first provider by name.
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("llm: no providers configured")
	}
	sort.Strings(names)
	return r.providers[names[0]], nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveKey finds the API key for a provider: environment first, then the
// key source when configured.
func ResolveKey(name string, source KeySource, logger *slog.Logger) string {
	envName := envKeyPrefix + strings.ToUpper(name) + "__API_KEY"
	if key := os.Getenv(envName); key != "" {
		return key
	}
	if source != nil {
		if key, err := source.ProviderKey(name); err == nil && key != "" {
			return key
		} else if err != nil && logger != nil {
			logger.Debug("provider key lookup failed", "provider", name, "error", err)
		}
	}
	return ""
}
