package modifier

import "fmt"

// ConflictError reports a registration whose name is already taken by a
// modifier with a different definition.
type ConflictError struct {
	Name string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("modifier %q already registered with different parameters", e.Name)
}

// NotFoundError reports a reference to a modifier name that was never
// registered.
type NotFoundError struct {
	Name string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("modifier %q is not registered", e.Name)
}

// Registry owns the set of modifiers for one scene. It enforces global
// name uniqueness and preserves first-seen insertion order, which governs
// where modifier declarations appear in the serialized output. A Registry
// is scoped per scene and is not safe for concurrent use.
type Registry struct {
	byName map[string]Modifier
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Modifier)}
}

// Register inserts a modifier by value. Re-registering an identical
// definition is an idempotent no-op that returns the existing entry.
// Registering a same-named modifier with a different kind or parameter
// vector fails with ConflictError.
func (r *Registry) Register(m Modifier) (Modifier, error) {
	name := m.Identifier()
	if name == "" {
		return nil, fmt.Errorf("modifier has an empty identifier")
	}
	if existing, ok := r.byName[name]; ok {
		if SameDefinition(existing, m) {
			return existing, nil
		}
		return nil, ConflictError{Name: name}
	}
	r.byName[name] = m
	r.order = append(r.order, name)
	return m, nil
}

// Resolve returns the modifier registered under name, or NotFoundError.
func (r *Registry) Resolve(name string) (Modifier, error) {
	m, ok := r.byName[name]
	if !ok {
		return nil, NotFoundError{Name: name}
	}
	return m, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of registered modifiers.
func (r *Registry) Len() int {
	return len(r.order)
}

// InOrder returns all modifiers in first-seen registration order.
func (r *Registry) InOrder() []Modifier {
	out := make([]Modifier, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}
