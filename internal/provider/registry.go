package provider

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds the known providers in preference order and resolves the
// active one: an explicit preference when set, otherwise the first provider
// reporting itself available.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	preferred string
}

// NewRegistry creates a registry with the given providers, most preferred
// first.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// SetPreferred pins the active provider by name. Empty restores automatic
// selection.
func (r *Registry) SetPreferred(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		r.preferred = ""
		return nil
	}
	for _, p := range r.providers {
		if p.Name() == name {
			r.preferred = name
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q", name)
}

// Active returns the provider to use, or nil when none is available.
func (r *Registry) Active() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.preferred != "" {
		for _, p := range r.providers {
			if p.Name() == r.preferred && p.Available() {
				return p
			}
		}
		return nil
	}
	for _, p := range r.providers {
		if p.Available() {
			return p
		}
	}
	return nil
}

// Names lists registered provider names in preference order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}
