package model

import (
	"fmt"

	"github.com/chazu/lumen/pkg/modifier"
)

// ValidationSeverity indicates whether a finding blocks assembly or is
// merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks assembly
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Object   string // name of the offending entity (empty if model-level)
	Message  string
	Severity ValidationSeverity

	// Err carries the underlying typed error when one applies, such as a
	// CycleError for shade nesting findings. May be nil.
	Err error
}

func (e ValidationError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Object, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// CycleError reports a shade hierarchy that loops back on itself.
type CycleError struct {
	Name string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("shade %q is nested inside itself", e.Name)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Object  string
	Message string
}

// ValidationResult bundles errors and warnings from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the structural checks: unique entity names across the
// whole model, no empty names, no conflicting reuse of a modifier
// identifier, and no shade that appears in its own ancestry. Read-only.
func Validate(m *Model) []ValidationError {
	// The nesting check must run first: the name and modifier walks
	// recurse through shade children and assume an acyclic tree.
	if errs := validateShadeNesting(m); len(errs) > 0 {
		return errs
	}
	var errs []ValidationError
	errs = append(errs, validateNames(m)...)
	errs = append(errs, validateModifiers(m)...)
	return errs
}

// ValidateAll runs all tiers and separates errors from warnings.
func ValidateAll(m *Model) ValidationResult {
	var result ValidationResult
	result.Errors = append(result.Errors, Validate(m)...)

	specErrs, warnings := validateSpecs(m)
	result.Errors = append(result.Errors, specErrs...)
	result.Warnings = append(result.Warnings, warnings...)
	return result
}

// forEachNamed visits every named entity in declaration order.
func forEachNamed(m *Model, visit func(kind, name string)) {
	for _, room := range m.Rooms {
		visit("room", room.Name)
		for _, f := range room.Faces {
			visit("face", f.Name)
			for _, a := range f.Apertures {
				visit("aperture", a.Name)
			}
		}
		for _, s := range room.Shades {
			visitShadeNames(s, visit)
		}
	}
	for _, s := range m.Shades {
		visitShadeNames(s, visit)
	}
}

func visitShadeNames(s *Shade, visit func(kind, name string)) {
	visit("shade", s.Name)
	for _, c := range s.Children {
		visitShadeNames(c, visit)
	}
}

// validateNames checks that no entity has an empty name and that no name
// is used twice anywhere in the model. Every primitive name must be
// unique scene-wide, not merely within its parent.
func validateNames(m *Model) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]string) // name -> kind of first use

	forEachNamed(m, func(kind, name string) {
		if name == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("%s with an empty name", kind),
				Severity: SeverityError,
			})
			return
		}
		if firstKind, ok := seen[name]; ok {
			errs = append(errs, ValidationError{
				Object:   name,
				Message:  fmt.Sprintf("duplicate name: used by both a %s and a %s", firstKind, kind),
				Severity: SeverityError,
			})
			return
		}
		seen[name] = kind
	})
	return errs
}

// forEachModifier visits every assigned (non-nil) modifier in first-use
// order, with the name of the entity that carries it.
func forEachModifier(m *Model, visit func(owner string, mod modifier.Modifier)) {
	var visitShade func(s *Shade)
	visitShade = func(s *Shade) {
		if s.Modifier != nil {
			visit(s.Name, s.Modifier)
		}
		for _, c := range s.Children {
			visitShade(c)
		}
	}
	for _, room := range m.Rooms {
		for _, f := range room.Faces {
			if f.Modifier != nil {
				visit(f.Name, f.Modifier)
			}
			for _, a := range f.Apertures {
				if a.Modifier != nil {
					visit(a.Name, a.Modifier)
				}
				for _, spec := range a.Overhangs {
					if spec.Modifier != nil {
						visit(a.Name, spec.Modifier)
					}
				}
			}
		}
		for _, s := range room.Shades {
			visitShade(s)
		}
	}
	for _, s := range m.Shades {
		visitShade(s)
	}
}

// validateModifiers checks that no modifier identifier is reused with a
// different definition anywhere in the model. Sharing one definition
// across many entities is the normal case and is fine.
func validateModifiers(m *Model) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]modifier.Modifier)

	forEachModifier(m, func(owner string, mod modifier.Modifier) {
		name := mod.Identifier()
		if first, ok := seen[name]; ok {
			if !modifier.SameDefinition(first, mod) {
				errs = append(errs, ValidationError{
					Object: owner,
					Message: fmt.Sprintf(
						"modifier %q reused with different parameters", name),
					Severity: SeverityError,
				})
			}
			return
		}
		seen[name] = mod
	})
	return errs
}

// validateShadeNesting rejects shade trees where a shade appears in its
// own ancestry. The value-type design should make this unreachable, but a
// caller wiring pointers by hand can still build a loop, and the walker
// must reject it rather than recurse forever.
func validateShadeNesting(m *Model) []ValidationError {
	var errs []ValidationError

	var walk func(s *Shade, path map[*Shade]bool) bool
	walk = func(s *Shade, path map[*Shade]bool) bool {
		if path[s] {
			cyc := CycleError{Name: s.Name}
			errs = append(errs, ValidationError{
				Object:   s.Name,
				Message:  cyc.Error(),
				Severity: SeverityError,
				Err:      cyc,
			})
			return true
		}
		path[s] = true
		for _, c := range s.Children {
			if walk(c, path) {
				return true
			}
		}
		delete(path, s)
		return false
	}

	roots := make([]*Shade, 0, len(m.Shades))
	for _, room := range m.Rooms {
		roots = append(roots, room.Shades...)
	}
	roots = append(roots, m.Shades...)
	for _, s := range roots {
		walk(s, make(map[*Shade]bool))
	}
	return errs
}

// validateSpecs runs the geometric tier: overhang specs must have
// positive depth, and tiny faces are worth a warning since they usually
// indicate a modeling mistake.
func validateSpecs(m *Model) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	const tinyArea = 1e-6

	for _, room := range m.Rooms {
		for _, f := range room.Faces {
			if f.Geometry.Area() < tinyArea {
				warnings = append(warnings, ValidationWarning{
					Object:  f.Name,
					Message: fmt.Sprintf("face area %g is effectively zero", f.Geometry.Area()),
				})
			}
			for _, a := range f.Apertures {
				for i, spec := range a.Overhangs {
					if spec.Depth <= 0 {
						errs = append(errs, ValidationError{
							Object: a.Name,
							Message: fmt.Sprintf(
								"overhang %d: depth must be positive, got %g", i, spec.Depth),
							Severity: SeverityError,
						})
					}
				}
			}
		}
	}
	return errs, warnings
}
