package geometry

import "math"

// Point is a point in the XZ plane. Y is up in the scene, so all plan
// geometry works in (x, z).
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Pt is a shorthand constructor.
func Pt(x, z float64) Point {
	return Point{X: x, Z: z}
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Z + q.Z}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Z - q.Z}
}

func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Z * s}
}

func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Z)
}

// Normalize returns the unit vector in the same direction, or the zero
// vector when the length is (near) zero.
func (p Point) Normalize() Point {
	l := p.Length()
	if l < 1e-12 {
		return Point{}
	}
	return Point{p.X / l, p.Z / l}
}

func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Z*q.Z
}

// Cross returns the z-component of the 3D cross product.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Z - p.Z*q.X
}

func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Z-q.Z)
}

// Perp returns p rotated 90 degrees (a perpendicular of the same length).
func (p Point) Perp() Point {
	return Point{-p.Z, p.X}
}

// RotateY rotates p about the origin by angle radians around the Y axis.
func (p Point) RotateY(angle float64) Point {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Point{p.X*c + p.Z*s, -p.X*s + p.Z*c}
}
