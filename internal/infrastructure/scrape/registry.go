// Package scrape holds the three extraction strategies behind the shared
// Extractor contract: a plain HTTP fetch with a fixed selector, a headless
// rendered-DOM walk, and an LLM-driven list agent.
package scrape

import (
	"fmt"

	"scraperd/internal/ports"
)

// Registry keeps a mapping from extractor names to their implementations.
type Registry struct {
	extractors map[string]ports.Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]ports.Extractor{}}
}

// Register adds or replaces an extractor implementation.
func (r *Registry) Register(e ports.Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]ports.Extractor{}
	}
	r.extractors[e.Name()] = e
}

// Resolve returns an extractor by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Extractor, error) {
	if e, ok := r.extractors[name]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("extractor %s is not registered", name)
}
