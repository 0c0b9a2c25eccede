package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the ordered list of movie sources
type Registry struct {
	mu            sync.RWMutex
	sources       map[string]MovieSource
	priorities    map[string]int
	enabledStatus map[string]bool
}

// NewRegistry creates a new source registry
func NewRegistry() *Registry {
	return &Registry{
		sources:       make(map[string]MovieSource),
		priorities:    make(map[string]int),
		enabledStatus: make(map[string]bool),
	}
}

// Register adds an enabled source to the registry
func (r *Registry) Register(name string, source MovieSource, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("source %s already registered", name)
	}

	if err := ValidateCapabilities(source.Capabilities()); err != nil {
		return fmt.Errorf("invalid capabilities for %s: %w", name, err)
	}

	r.sources[name] = source
	r.priorities[name] = priority
	r.enabledStatus[name] = true

	return nil
}

// Get returns a source by name
func (r *Registry) Get(name string) (MovieSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.sources[name]
	return source, exists
}

// List returns all registered source names, highest priority first
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedLocked()
}

func (r *Registry) sortedLocked() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if r.priorities[names[i]] == r.priorities[names[j]] {
			return names[i] < names[j]
		}
		return r.priorities[names[i]] > r.priorities[names[j]]
	})

	return names
}

// Enable turns a registered source back on
func (r *Registry) Enable(name string) error {
	return r.setEnabled(name, true)
}

// Disable keeps a source registered but skips it during selection
func (r *Registry) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; !exists {
		return fmt.Errorf("source %s not found", name)
	}
	r.enabledStatus[name] = enabled
	return nil
}

// IsEnabled reports whether the named source takes part in selection
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledStatus[name]
}

// Select returns the first enabled source, in priority order, that reports
// itself usable for the criteria.
func (r *Registry) Select(criteria Criteria) (MovieSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.sortedLocked() {
		if !r.enabledStatus[name] {
			continue
		}
		if source := r.sources[name]; source.Usable(criteria) {
			return source, true
		}
	}
	return nil, false
}
