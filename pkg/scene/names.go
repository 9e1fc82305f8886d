package scene

import "fmt"

// ConflictError reports a scene-wide name collision.
type ConflictError struct {
	Name string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("name %q already used in this scene", e.Name)
}

// NameAllocator hands out unique primitive names within one scene. Names
// given by the caller are claimed as-is; derived names get a numeric
// suffix chosen to avoid every name claimed so far.
type NameAllocator struct {
	used map[string]bool
}

func NewNameAllocator() *NameAllocator {
	return &NameAllocator{used: make(map[string]bool)}
}

// Claim reserves an explicit name, failing if it is already taken.
func (a *NameAllocator) Claim(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if a.used[name] {
		return ConflictError{Name: name}
	}
	a.used[name] = true
	return nil
}

// Derive reserves and returns <parent>_<role><index> with the smallest
// free index.
func (a *NameAllocator) Derive(parent, role string) string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s_%s%d", parent, role, i)
		if !a.used[name] {
			a.used[name] = true
			return name
		}
	}
}
