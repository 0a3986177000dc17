package knob

import (
	"errors"
	"fmt"
)

// Domain errors for knob construction and lookup.
var (
	// ErrConfiguration indicates an invalid range, step or geometry.
	ErrConfiguration = errors.New("knob: invalid configuration")

	// ErrDuplicateID indicates a registry already holds a knob with that id.
	ErrDuplicateID = errors.New("knob: duplicate id")

	// ErrUnknownKnob indicates no knob is registered under an id.
	ErrUnknownKnob = errors.New("knob: unknown id")
)

// ConfigurationError describes which construction parameter was rejected.
type ConfigurationError struct {
	ID     string
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("knob: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("knob %q: invalid %s (%v): %s", e.ID, e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
