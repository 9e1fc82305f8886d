package scene

import (
	"fmt"

	"github.com/chazu/lumen/pkg/geometry"
	"github.com/chazu/lumen/pkg/model"
	"github.com/chazu/lumen/pkg/modifier"
)

// DefaultPlaneOffset is the vertical nudge applied to derived shades so
// they never sit exactly in the plane of the edge they hang from, which
// produces coincident-surface artifacts at render time.
const DefaultPlaneOffset = 1e-7

// InvalidSpecError reports a derived-geometry request that cannot be
// satisfied for the geometry it targets.
type InvalidSpecError struct {
	Subject string
	Reason  string
}

func (e InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid derived-geometry spec for %q: %s", e.Subject, e.Reason)
}

// Generator derives shading geometry from apertures. The zero value is
// not usable; call NewGenerator.
type Generator struct {
	// PlaneOffset lifts derived shades off their source edge.
	PlaneOffset float64
	// OutdoorModifier is used for outdoor overhangs with no explicit
	// modifier.
	OutdoorModifier modifier.Modifier
	// IndoorModifier is used for indoor light shelves with no explicit
	// modifier.
	IndoorModifier modifier.Modifier
}

func NewGenerator() *Generator {
	return &Generator{
		PlaneOffset:     DefaultPlaneOffset,
		OutdoorModifier: modifier.GenericExteriorShade,
		IndoorModifier:  modifier.GenericInteriorShade,
	}
}

// Overhang derives the horizontal shade polygon requested by spec from
// the aperture's top edge. faceNormal is the outward normal of the
// aperture's parent face; the overhang extends along its horizontal
// projection, or against it for an indoor light shelf. The top edge is
// found by height, not by index, so the result is correct for any
// aperture winding or wall orientation.
func (g *Generator) Overhang(name string, faceNormal geometry.Vec, aperture geometry.Polygon, spec model.OverhangSpec) (geometry.Polygon, error) {
	if spec.Depth <= 0 {
		return geometry.Polygon{}, InvalidSpecError{
			Subject: name,
			Reason:  fmt.Sprintf("depth must be positive, got %g", spec.Depth),
		}
	}

	horiz := geometry.Vec{X: faceNormal.X, Y: faceNormal.Y}
	if horiz.Length() < 1e-9 {
		return geometry.Polygon{}, InvalidSpecError{
			Subject: name,
			Reason:  "parent face is horizontal, top edge is undefined",
		}
	}
	horiz = horiz.Normalize()
	if spec.Indoor {
		horiz = horiz.MulScalar(-1)
	}
	extrude := horiz.MulScalar(spec.Depth)

	near1, near2, err := topEdge(aperture)
	if err != nil {
		return geometry.Polygon{}, InvalidSpecError{Subject: name, Reason: err.Error()}
	}

	dz := g.PlaneOffset - spec.Offset
	lift := geometry.Vec{Z: dz}
	quad := []geometry.Vec{
		near1.Add(lift),
		near2.Add(lift),
		near2.Add(lift).Add(extrude),
		near1.Add(lift).Add(extrude),
	}
	poly, err := geometry.NewPolygon(quad)
	if err != nil {
		return geometry.Polygon{}, InvalidSpecError{Subject: name, Reason: err.Error()}
	}
	return poly, nil
}

// topEdge returns the endpoints of the aperture's highest edge, ordered
// as they appear in the loop.
func topEdge(p geometry.Polygon) (geometry.Vec, geometry.Vec, error) {
	pts := p.Points()
	n := len(pts)

	// Pick the edge whose lower endpoint is highest: for a convex
	// aperture loop that is exactly the top edge.
	best := -1
	bestLow := 0.0
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		low := a.Z
		if b.Z < low {
			low = b.Z
		}
		if best == -1 || low > bestLow {
			best = i
			bestLow = low
		}
	}
	a, b := pts[best], pts[(best+1)%n]
	if a.Sub(b).Length() < 1e-9 {
		return geometry.Vec{}, geometry.Vec{}, fmt.Errorf("degenerate top edge")
	}
	return a, b, nil
}
