package search

import "fmt"

// Registry holds the search providers registered at startup. Exactly one
// backend serves a process: the first registered provider is the active one,
// chosen by configuration before any request runs. There is no fallback
// across providers and no per-request override.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: []Provider{},
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(provider Provider) {
	r.providers = append(r.providers, provider)
}

// Select returns the active provider
func (r *Registry) Select() (Provider, error) {
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no search provider registered")
	}
	return r.providers[0], nil
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	return len(r.providers)
}
