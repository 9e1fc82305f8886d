// Package scene flattens a building model into an ordered list of scene
// entries: every modifier declared before any geometry references it,
// every primitive uniquely named, derived shading geometry generated in
// place. The entry list is what the rad writer serializes.
package scene

import (
	"fmt"

	"github.com/chazu/lumen/pkg/geometry"
	"github.com/chazu/lumen/pkg/model"
	"github.com/chazu/lumen/pkg/modifier"
)

// CycleError reports a shade hierarchy that loops back on itself. It is
// the type model validation reports for the same condition, re-exported
// so BuildScene callers can match it without importing pkg/model.
type CycleError = model.CycleError

// EntryKind discriminates scene entries.
type EntryKind int

const (
	EntryModifier EntryKind = iota
	EntryPolygon
)

// Entry is one declaration in the flattened scene: either a modifier
// definition or a named polygon referencing one.
type Entry struct {
	Kind EntryKind

	// Modifier is set for EntryModifier entries.
	Modifier modifier.Modifier

	// Name, ModifierName and Polygon are set for EntryPolygon entries.
	Name         string
	ModifierName string
	Polygon      geometry.Polygon

	// Section groups entries for cosmetic banners in the output.
	Section string
}

// Scene is a fully resolved, ordered scene ready for serialization.
// Entries are deterministic for a given model: modifiers in first-use
// order, then geometry in declaration order.
type Scene struct {
	Name     string
	Registry *modifier.Registry
	Entries  []Entry
}

// Assembler builds scenes from models. Generator settings control
// derived geometry; see NewGenerator for the defaults.
type Assembler struct {
	Generator *Generator
}

func NewAssembler() *Assembler {
	return &Assembler{Generator: NewGenerator()}
}

// primitive is one geometric declaration produced by the model walk,
// with its modifier already resolved to a concrete definition.
type primitive struct {
	section string
	name    string // empty when the name must be derived
	mod     modifier.Modifier
	geom    geometry.Polygon

	// parent and role name derived primitives: <parent>_<role><index>.
	parent string
	role   string
}

// defaultFaceModifier maps a face role to its fallback modifier.
func defaultFaceModifier(t model.FaceType) modifier.Modifier {
	switch t {
	case model.Floor:
		return modifier.GenericFloor
	case model.Ceiling, model.Roof:
		return modifier.GenericCeiling
	default:
		return modifier.GenericWall
	}
}

func orDefault(m, fallback modifier.Modifier) modifier.Modifier {
	if m != nil {
		return m
	}
	return fallback
}

// overhangModifier resolves the modifier for one overhang spec.
func (a *Assembler) overhangModifier(spec model.OverhangSpec) modifier.Modifier {
	if spec.Modifier != nil {
		return spec.Modifier
	}
	if spec.Indoor {
		return a.Generator.IndoorModifier
	}
	return a.Generator.OutdoorModifier
}

// BuildScene validates the model and flattens it. The model is walked
// once, collecting every primitive with its derived geometry already
// generated; modifiers register in first-use order and all precede
// polygon entries, so no polygon ever references a modifier that has
// not been declared.
func (a *Assembler) BuildScene(m *model.Model) (*Scene, error) {
	result := model.ValidateAll(m)
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("model %q failed validation: %w (%d errors total)",
			m.Name, result.Errors[0], len(result.Errors))
	}

	var prims []primitive
	err := a.walk(m, func(p primitive) error {
		prims = append(prims, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	scene := &Scene{Name: m.Name, Registry: modifier.NewRegistry()}
	for _, p := range prims {
		if _, err := scene.Registry.Register(p.mod); err != nil {
			return nil, err
		}
	}
	for _, mod := range scene.Registry.InOrder() {
		scene.Entries = append(scene.Entries, Entry{
			Kind:     EntryModifier,
			Modifier: mod,
			Section:  "Modifiers",
		})
	}

	alloc := NewNameAllocator()
	for _, p := range prims {
		name := p.name
		if name == "" {
			name = alloc.Derive(p.parent, p.role)
		} else if err := alloc.Claim(name); err != nil {
			return nil, err
		}
		scene.Entries = append(scene.Entries, Entry{
			Kind:         EntryPolygon,
			Name:         name,
			ModifierName: p.mod.Identifier(),
			Polygon:      p.geom,
			Section:      p.section,
		})
	}
	return scene, nil
}

// walk visits every primitive in deterministic emission order: per room
// the faces as declared, each aperture right after its face, each
// overhang right after its aperture, then the room's shades; finally
// the freestanding shades.
func (a *Assembler) walk(m *model.Model, visit func(primitive) error) error {
	for _, room := range m.Rooms {
		section := room.Name
		for _, f := range room.Faces {
			err := visit(primitive{
				section: section,
				name:    f.Name,
				mod:     orDefault(f.Modifier, defaultFaceModifier(f.Type)),
				geom:    f.Geometry,
			})
			if err != nil {
				return err
			}
			for _, ap := range f.Apertures {
				err := visit(primitive{
					section: section,
					name:    ap.Name,
					mod:     orDefault(ap.Modifier, modifier.GenericExteriorWindow),
					geom:    ap.Geometry,
				})
				if err != nil {
					return err
				}
				for _, spec := range ap.Overhangs {
					role := "OutOverhang"
					if spec.Indoor {
						role = "InOverhang"
					}
					geom, err := a.Generator.Overhang(ap.Name, f.Geometry.Normal(), ap.Geometry, spec)
					if err != nil {
						return err
					}
					err = visit(primitive{
						section: section,
						mod:     a.overhangModifier(spec),
						geom:    geom,
						parent:  ap.Name,
						role:    role,
					})
					if err != nil {
						return err
					}
				}
			}
		}
		for _, s := range room.Shades {
			if err := a.walkShade(s, section, modifier.GenericInteriorShade, visit, make(map[*model.Shade]bool)); err != nil {
				return err
			}
		}
	}
	for _, s := range m.Shades {
		if err := a.walkShade(s, "Context", modifier.GenericContext, visit, make(map[*model.Shade]bool)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) walkShade(s *model.Shade, section string, fallback modifier.Modifier, visit func(primitive) error, path map[*model.Shade]bool) error {
	if path[s] {
		return CycleError{Name: s.Name}
	}
	path[s] = true
	defer delete(path, s)

	err := visit(primitive{
		section: section,
		name:    s.Name,
		mod:     orDefault(s.Modifier, fallback),
		geom:    s.Geometry,
	})
	if err != nil {
		return err
	}
	for _, c := range s.Children {
		if err := a.walkShade(c, section, fallback, visit, path); err != nil {
			return err
		}
	}
	return nil
}
