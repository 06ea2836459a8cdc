package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/buildwise-ai/buildwise/internal/models"
)

// Registration pairs a descriptor with its live adapter.
type Registration struct {
	Descriptor models.ProviderDescriptor
	Provider   CompletionProvider
}

// Registry holds every registered provider for the process lifetime.
// Descriptors are immutable after Register.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds a provider. Re-registering a name is a configuration bug
// and is rejected.
func (r *Registry) Register(desc models.ProviderDescriptor, provider CompletionProvider) error {
	if desc.Name == "" {
		return models.NewValidationError("provider descriptor requires a name", nil)
	}
	if provider == nil {
		return models.NewValidationError(fmt.Sprintf("provider %s: nil adapter", desc.Name), nil)
	}

	name := strings.ToLower(desc.Name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return models.NewValidationError(fmt.Sprintf("provider %s already registered", name), nil)
	}
	desc.Name = name
	r.entries[name] = Registration{Descriptor: desc, Provider: provider}
	return nil
}

// Get returns the registration for a provider name.
func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[strings.ToLower(name)]
	return reg, ok
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CandidatesFor returns the providers supporting the capability, ordered
// by priority rank (lower rank first, name as tiebreak for determinism).
// priorityOverride, when non-nil, replaces the registered rank for the
// named providers.
func (r *Registry) CandidatesFor(capability models.Capability, priorityOverride map[string]int) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]Registration, 0, len(r.entries))
	for _, reg := range r.entries {
		if reg.Descriptor.Supports(capability) {
			candidates = append(candidates, reg)
		}
	}

	rank := func(reg Registration) int {
		if priorityOverride != nil {
			if p, ok := priorityOverride[reg.Descriptor.Name]; ok {
				return p
			}
		}
		return reg.Descriptor.Priority
	}

	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := rank(candidates[i]), rank(candidates[j])
		if ri != rj {
			return ri < rj
		}
		return candidates[i].Descriptor.Name < candidates[j].Descriptor.Name
	})

	return candidates
}
