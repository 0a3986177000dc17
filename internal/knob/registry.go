package knob

import (
	"fmt"
	"sort"
)

// Registry maps knob ids to knobs for the listeners of one surface root.
type Registry struct {
	knobs map[string]*Knob
}

func NewRegistry() *Registry {
	return &Registry{knobs: make(map[string]*Knob)}
}

// Add registers k. Ids must be unique.
func (r *Registry) Add(k *Knob) error {
	if _, ok := r.knobs[k.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, k.ID())
	}
	r.knobs[k.ID()] = k
	return nil
}

func (r *Registry) Get(id string) (*Knob, bool) {
	k, ok := r.knobs[id]
	return k, ok
}

// Lookup is Get with an error for unknown ids.
func (r *Registry) Lookup(id string) (*Knob, error) {
	k, ok := r.knobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKnob, id)
	}
	return k, nil
}

// Remove drops the knob with id and reports whether it was registered.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.knobs[id]; !ok {
		return false
	}
	delete(r.knobs, id)
	return true
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.knobs))
	for id := range r.knobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int { return len(r.knobs) }
