// Package strategy holds the pluggable policies used by domain services.
package strategy

// Policy is a named, swappable rule
type Policy interface {
	// Name is the registry key, also stored in config
	Name() string
	Description() string
}

// Named implements Policy for embedding
type Named struct {
	name        string
	description string
}

// NewNamed creates the Policy identity of a strategy
func NewNamed(name, description string) Named {
	return Named{name: name, description: description}
}

func (n Named) Name() string { return n.name }

func (n Named) Description() string { return n.description }
