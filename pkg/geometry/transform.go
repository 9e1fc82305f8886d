package geometry

import "math"

// RotateZ rotates v counter-clockwise about the world Z axis by the given
// angle in degrees.
func RotateZ(v Vec, degrees float64) Vec {
	rad := degrees * math.Pi / 180.0
	sin, cos := math.Sin(rad), math.Cos(rad)
	return Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
		Z: v.Z,
	}
}

// RotateZ returns a copy of the polygon rotated counter-clockwise about
// the world Z axis by the given angle in degrees.
func (p Polygon) RotateZ(degrees float64) Polygon {
	pts := make([]Vec, len(p.points))
	for i, pt := range p.points {
		pts[i] = RotateZ(pt, degrees)
	}
	return Polygon{points: pts}
}
