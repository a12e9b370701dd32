package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/docsentry/docsentry/internal/types"
)

// Registry manages reasoning-service provider registration, discovery, and
// health monitoring. All operations are safe for concurrent use.
type Registry interface {
	// RegisterProvider registers a provider with the registry
	RegisterProvider(provider Provider) error

	// UnregisterProvider removes a provider from the registry by name
	UnregisterProvider(name string) error

	// GetProvider retrieves a provider by name
	GetProvider(name string) (Provider, error)

	// ListProviders returns the names of all registered providers
	ListProviders() []string

	// Health returns the overall health status of the registry
	Health(ctx context.Context) types.HealthStatus
}

// DefaultRegistry implements Registry with thread-safe operations.
type DefaultRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new DefaultRegistry instance
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		providers: make(map[string]Provider),
	}
}

// RegisterProvider registers a provider with the registry.
// Returns ErrProviderAlreadyExists if a provider with the same name is
// already registered, ErrProviderInvalidInput for nil or unnamed providers.
func (r *DefaultRegistry) RegisterProvider(provider Provider) error {
	if provider == nil {
		return types.NewError(ErrProviderInvalidInput, "provider cannot be nil")
	}

	name := provider.Name()
	if name == "" {
		return types.NewError(ErrProviderInvalidInput, "provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return types.NewError(ErrProviderAlreadyExists, fmt.Sprintf("provider %q already registered", name))
	}

	r.providers[name] = provider

	return nil
}

// UnregisterProvider removes a provider from the registry by name.
func (r *DefaultRegistry) UnregisterProvider(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return types.NewError(ErrProviderNotFound, fmt.Sprintf("provider %q not found", name))
	}

	delete(r.providers, name)

	return nil
}

// GetProvider retrieves a provider by name.
func (r *DefaultRegistry) GetProvider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, types.NewError(ErrProviderNotFound, fmt.Sprintf("provider %q not found", name))
	}

	return provider, nil
}

// ListProviders returns the names of all registered providers, sorted
// alphabetically for consistent ordering.
func (r *DefaultRegistry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Health returns the overall health status of the registry:
// healthy if all providers are healthy, degraded if some are unhealthy,
// unhealthy if all are unhealthy or none are registered.
func (r *DefaultRegistry) Health(ctx context.Context) types.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.providers) == 0 {
		return types.Unhealthy("no providers registered")
	}

	healthy := 0
	for _, provider := range r.providers {
		if provider.Health(ctx).IsHealthy() {
			healthy++
		}
	}

	switch {
	case healthy == len(r.providers):
		return types.Healthy(fmt.Sprintf("%d providers healthy", healthy))
	case healthy > 0:
		return types.Degraded(fmt.Sprintf("%d of %d providers healthy", healthy, len(r.providers)))
	default:
		return types.Unhealthy("all providers unhealthy")
	}
}
