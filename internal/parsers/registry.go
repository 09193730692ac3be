package parsers

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the registered vendor parsers keyed by source code.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Parser),
	}
}

// Register adds a parser under its source code.
func (r *Registry) Register(p Parser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	source := p.Source()
	if source == "" {
		return fmt.Errorf("parser source cannot be empty")
	}
	if _, exists := r.parsers[source]; exists {
		return fmt.Errorf("parser %s is already registered", source)
	}

	r.parsers[source] = p
	return nil
}

// Get returns the parser for a source code.
func (r *Registry) Get(source string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.parsers[source]
	if !exists {
		return nil, fmt.Errorf("parser %s not found", source)
	}
	return p, nil
}

// Has checks whether a parser is registered for a source code.
func (r *Registry) Has(source string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.parsers[source]
	return exists
}

// Sources returns the registered source codes in sorted order.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.parsers))
	for source := range r.parsers {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}
