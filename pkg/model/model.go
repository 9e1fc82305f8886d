// Package model describes a building as rooms, faces, apertures and
// shades, each paired with an optical modifier. The model is the input to
// scene assembly; it permits shared modifiers and nested shade hierarchies
// that the flat output format does not, and the assembler resolves that
// tension.
package model

import (
	"github.com/chazu/lumen/pkg/geometry"
	"github.com/chazu/lumen/pkg/modifier"
)

// FaceType tags the role of a face within a room's enclosure.
type FaceType int

const (
	Floor FaceType = iota
	Wall
	Ceiling
	Roof
)

func (t FaceType) String() string {
	switch t {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	case Ceiling:
		return "ceiling"
	case Roof:
		return "roof"
	default:
		return "unknown"
	}
}

// OverhangSpec requests derived shading geometry for an aperture: a
// horizontal polygon extruded from the aperture's top edge. Outdoor
// overhangs block direct sun; indoor ones act as light shelves and are
// typically higher-reflectance.
type OverhangSpec struct {
	// Depth is the extrusion distance along the parent face normal.
	// Must be positive.
	Depth float64
	// Offset shifts the overhang down (positive) from the aperture's
	// top edge along the vertical axis.
	Offset float64
	// Indoor extrudes against the outward normal (a light shelf)
	// instead of along it.
	Indoor bool
	// Modifier overrides the generator's default overhang modifier.
	Modifier modifier.Modifier
}

// Aperture is an opening embedded in a parent face's plane. Its outward
// orientation is derived from the parent face, never assumed from a world
// axis.
type Aperture struct {
	Name      string
	Geometry  geometry.Polygon
	Modifier  modifier.Modifier // nil means the generic exterior glazing
	Overhangs []OverhangSpec
}

// Face is one surface of a room's enclosure.
type Face struct {
	Name      string
	Type      FaceType
	Geometry  geometry.Polygon
	Modifier  modifier.Modifier // nil means the generic default for Type
	Apertures []*Aperture
}

// Shade is a shading surface with its own modifier: context geometry like
// trees, attached overhang plates, interior furniture surfaces. Shades may
// nest; children are serialized after their parent.
type Shade struct {
	Name     string
	Geometry geometry.Polygon
	Modifier modifier.Modifier // nil means the generic context shade
	Children []*Shade
}

// Room is a closed volume of faces plus any interior shading elements.
type Room struct {
	Name   string
	Faces  []*Face
	Shades []*Shade
}

// Model is the aggregate root handed to scene assembly: rooms in declared
// order plus freestanding shades.
type Model struct {
	Name   string
	Rooms  []*Room
	Shades []*Shade
}

// New returns an empty model with the given name.
func New(name string) *Model {
	return &Model{Name: name}
}

// AddRoom appends a room to the model.
func (m *Model) AddRoom(r *Room) {
	m.Rooms = append(m.Rooms, r)
}

// AddShade appends a freestanding (context) shade to the model.
func (m *Model) AddShade(s *Shade) {
	m.Shades = append(m.Shades, s)
}

// AddFace appends a face to the room.
func (r *Room) AddFace(f *Face) {
	r.Faces = append(r.Faces, f)
}

// AddShade appends an interior shading element to the room.
func (r *Room) AddShade(s *Shade) {
	r.Shades = append(r.Shades, s)
}

// AddAperture embeds an aperture in the face.
func (f *Face) AddAperture(a *Aperture) {
	f.Apertures = append(f.Apertures, a)
}
