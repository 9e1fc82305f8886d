package model

import (
	"fmt"
	"math"

	"github.com/chazu/lumen/pkg/geometry"
)

// Vec is re-exported for convenience when constructing models by hand.
type Vec = geometry.Vec

// faceRoles is the declared emission order for a box room's faces.
var faceRoles = []struct {
	suffix string
	ftype  FaceType
}{
	{"Floor", Floor},
	{"Front", Wall},
	{"Right", Wall},
	{"Back", Wall},
	{"Left", Wall},
	{"Ceiling", Ceiling},
}

// BoxRoom builds a rectangular room: floor, front, right, back and left
// walls, and a ceiling, in that declared order. Width runs along X, depth
// along Y, height along Z, with the origin at the front-left floor corner.
// A non-zero angle rotates the whole footprint counter-clockwise about the
// world Z axis, which makes every wall non-axis-aligned. All face normals
// point out of the volume.
func BoxRoom(name string, width, depth, height, angle float64) (*Room, error) {
	if width <= 0 || depth <= 0 || height <= 0 {
		return nil, fmt.Errorf("box room %q: dimensions must be positive, got %gx%gx%g",
			name, width, depth, height)
	}

	p1 := Vec{X: 0, Y: 0, Z: 0}
	p2 := Vec{X: width, Y: 0, Z: 0}
	p3 := Vec{X: width, Y: depth, Z: 0}
	p4 := Vec{X: 0, Y: depth, Z: 0}
	up := Vec{Z: height}
	t1, t2, t3, t4 := p1.Add(up), p2.Add(up), p3.Add(up), p4.Add(up)

	loops := [][]Vec{
		{p1, p4, p3, p2}, // floor, normal -Z
		{p1, p2, t2, t1}, // front, normal -Y
		{p2, p3, t3, t2}, // right, normal +X
		{p3, p4, t4, t3}, // back, normal +Y
		{p4, p1, t1, t4}, // left, normal -X
		{t1, t2, t3, t4}, // ceiling, normal +Z
	}

	room := &Room{Name: name}
	for i, loop := range loops {
		poly, err := geometry.NewPolygon(loop)
		if err != nil {
			return nil, fmt.Errorf("box room %q: %w", name, err)
		}
		if angle != 0 {
			poly = poly.RotateZ(angle)
		}
		room.AddFace(&Face{
			Name:     fmt.Sprintf("%s_%s", name, faceRoles[i].suffix),
			Type:     faceRoles[i].ftype,
			Geometry: poly,
		})
	}
	return room, nil
}

// ApertureByRatio embeds a centered aperture in the face covering the
// given fraction of its area, named <face>_Glz<index>. The aperture is an
// inset copy of the face loop, so it stays in the face plane and keeps the
// face winding for any wall orientation.
func (f *Face) ApertureByRatio(ratio float64) (*Aperture, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, fmt.Errorf("face %q: aperture ratio must be in (0, 1), got %g", f.Name, ratio)
	}
	// Area scales with the square of the linear inset factor.
	inset := f.Geometry.ScaleAboutCentroid(math.Sqrt(ratio))
	ap := &Aperture{
		Name:     fmt.Sprintf("%s_Glz%d", f.Name, len(f.Apertures)),
		Geometry: inset,
	}
	f.AddAperture(ap)
	return ap, nil
}
