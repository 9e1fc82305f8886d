// Package geometry provides the validated planar polygon type used by all
// scene primitives. Polygons are immutable values; transformations return
// new polygons rather than mutating in place.
package geometry

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is the 3D coordinate type used throughout the model.
type Vec = v3.Vec

// CoplanarTolerance is the relative planarity tolerance, scaled by the
// polygon's bounding-box diagonal.
const CoplanarTolerance = 1e-6

// coincidentEps is the absolute distance below which two consecutive
// vertices are considered the same point.
const coincidentEps = 1e-9

// DegenerateGeometryError reports a polygon that cannot form a valid
// planar surface: too few points, coincident consecutive vertices,
// zero area, or non-coplanar vertices.
type DegenerateGeometryError struct {
	Reason string
}

func (e DegenerateGeometryError) Error() string {
	return "degenerate geometry: " + e.Reason
}

// Polygon is a planar polygon with at least three vertices. The vertex
// loop is ordered counter-clockwise as viewed from the front side (the
// side the normal points toward). The last vertex connects to the first.
type Polygon struct {
	points []Vec
}

// NewPolygon validates the vertex list and returns an immutable Polygon.
// Validation fails with DegenerateGeometryError when there are fewer than
// three points, when consecutive points coincide (including the closing
// edge), when the loop has zero area, or when the points are not coplanar
// within CoplanarTolerance of the bounding-box diagonal.
func NewPolygon(points []Vec) (Polygon, error) {
	if len(points) < 3 {
		return Polygon{}, DegenerateGeometryError{
			Reason: fmt.Sprintf("polygon needs at least 3 points, got %d", len(points)),
		}
	}

	pts := make([]Vec, len(points))
	copy(pts, points)

	for i := range pts {
		next := pts[(i+1)%len(pts)]
		if pts[i].Sub(next).Length() <= coincidentEps {
			return Polygon{}, DegenerateGeometryError{
				Reason: fmt.Sprintf("coincident consecutive vertices at index %d", i),
			}
		}
	}

	n := newellNormal(pts)
	if n.Length() <= coincidentEps {
		return Polygon{}, DegenerateGeometryError{Reason: "polygon has zero area"}
	}

	if err := checkCoplanar(pts, n.Normalize()); err != nil {
		return Polygon{}, err
	}

	return Polygon{points: pts}, nil
}

// MustPolygon is a NewPolygon wrapper for statically-known geometry.
// It panics on invalid input.
func MustPolygon(points []Vec) Polygon {
	p, err := NewPolygon(points)
	if err != nil {
		panic(fmt.Sprintf("geometry: %v", err))
	}
	return p
}

// newellNormal computes the (unnormalized) Newell normal over the full
// vertex loop. Its length is twice the polygon area, and the method
// tolerates mild concavity where a single cross product would not.
func newellNormal(pts []Vec) Vec {
	var n Vec
	for i, cur := range pts {
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// checkCoplanar verifies every vertex lies on the plane through the
// centroid with the given unit normal, within the relative tolerance.
func checkCoplanar(pts []Vec, unit Vec) error {
	c := centroid(pts)
	diag := bboxDiagonal(pts)
	tol := CoplanarTolerance * diag

	for i, p := range pts {
		if d := math.Abs(p.Sub(c).Dot(unit)); d > tol {
			return DegenerateGeometryError{
				Reason: fmt.Sprintf(
					"vertex %d is %g off the polygon plane (tolerance %g)", i, d, tol),
			}
		}
	}
	return nil
}

func centroid(pts []Vec) Vec {
	var sum Vec
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.DivScalar(float64(len(pts)))
}

func bboxDiagonal(pts []Vec) float64 {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return hi.Sub(lo).Length()
}

// Points returns a copy of the vertex loop.
func (p Polygon) Points() []Vec {
	out := make([]Vec, len(p.points))
	copy(out, p.points)
	return out
}

// NumPoints returns the vertex count.
func (p Polygon) NumPoints() int {
	return len(p.points)
}

// Normal returns the unit outward normal via the Newell method.
func (p Polygon) Normal() Vec {
	return newellNormal(p.points).Normalize()
}

// Centroid returns the vertex centroid.
func (p Polygon) Centroid() Vec {
	return centroid(p.points)
}

// Area returns the enclosed area.
func (p Polygon) Area() float64 {
	return newellNormal(p.points).Length() / 2
}

// Translate returns a copy of the polygon moved by d.
func (p Polygon) Translate(d Vec) Polygon {
	pts := make([]Vec, len(p.points))
	for i, pt := range p.points {
		pts[i] = pt.Add(d)
	}
	return Polygon{points: pts}
}

// OffsetAlongNormal returns a copy of the polygon moved by dist along its
// own unit normal. Negative distances move against the normal.
func (p Polygon) OffsetAlongNormal(dist float64) Polygon {
	return p.Translate(p.Normal().MulScalar(dist))
}

// ScaleAboutCentroid returns a copy of the polygon with every vertex moved
// toward (factor < 1) or away from (factor > 1) the centroid. The result
// stays in the polygon plane. Used to inset apertures into faces.
func (p Polygon) ScaleAboutCentroid(factor float64) Polygon {
	c := centroid(p.points)
	pts := make([]Vec, len(p.points))
	for i, pt := range p.points {
		pts[i] = c.Add(pt.Sub(c).MulScalar(factor))
	}
	return Polygon{points: pts}
}

// Flattened returns the coordinates as one x,y,z-interleaved slice, the
// layout used by the wire format.
func (p Polygon) Flattened() []float64 {
	out := make([]float64, 0, len(p.points)*3)
	for _, pt := range p.points {
		out = append(out, pt.X, pt.Y, pt.Z)
	}
	return out
}
