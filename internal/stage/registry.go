package stage

import (
	"fmt"
	"sync"
)

// Registry maps each stage to its persona. It is preloaded with the built-in
// cast and safe for concurrent use; the pipeline coordinator reads from it
// on every turn.
type Registry interface {
	// Get retrieves the persona for a stage
	Get(s Stage) (Persona, error)

	// Register replaces the persona for a stage
	Register(p Persona) error

	// All returns every persona in stage-sequence order
	All() []Persona
}

// DefaultRegistry is the default Registry implementation.
type DefaultRegistry struct {
	mu       sync.RWMutex
	personas map[Stage]Persona
}

// NewRegistry creates a registry preloaded with the built-in personas.
func NewRegistry() *DefaultRegistry {
	r := &DefaultRegistry{
		personas: make(map[Stage]Persona, len(Sequence())),
	}
	for _, p := range builtinPersonas() {
		r.personas[p.Stage] = p
	}
	return r
}

// Get retrieves the persona for a stage.
func (r *DefaultRegistry) Get(s Stage) (Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.personas[s]
	if !ok {
		return Persona{}, fmt.Errorf("no persona registered for stage %q", s)
	}
	return p, nil
}

// Register validates and stores a persona, replacing any existing persona
// for the same stage.
func (r *DefaultRegistry) Register(p Persona) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.personas[p.Stage] = p
	return nil
}

// All returns every persona in stage-sequence order.
func (r *DefaultRegistry) All() []Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Persona, 0, len(Sequence()))
	for _, s := range Sequence() {
		if p, ok := r.personas[s]; ok {
			out = append(out, p)
		}
	}
	return out
}
