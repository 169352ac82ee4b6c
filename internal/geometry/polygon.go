package geometry

import "math"

// Polygon is an ordered list of vertices, implicitly closed (the last
// vertex connects back to the first).
type Polygon []Point

// IsEmpty reports whether the polygon has too few vertices to bound any
// area. Degenerate polygons contribute nothing to containment or
// elevation queries.
func (p Polygon) IsEmpty() bool {
	return len(p) < 3
}

// SignedArea returns the shoelace area: positive when the vertices wind
// counterclockwise in the XZ plane.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].X*p[j].Z - p[j].X*p[i].Z
	}
	return area / 2
}

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() (min, max Point) {
	if len(p) == 0 {
		return Point{}, Point{}
	}
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Z = math.Max(max.Z, v.Z)
	}
	return min, max
}

// PointInPolygon tests containment with a ray cast parity check.
// Polygons with fewer than 3 vertices contain nothing. Boundary points
// are implementation-defined but deterministic.
func PointInPolygon(x, z float64, poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi := poly[i]
		pj := poly[j]
		if (pi.Z > z) != (pj.Z > z) &&
			x < (pj.X-pi.X)*(z-pi.Z)/(pj.Z-pi.Z)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// Outset expands the polygon outward by a uniform distance. Each edge is
// shifted along its outward normal and consecutive shifted edges are
// intersected to recover the corner; near-parallel corners fall back to
// the shifted vertex itself.
func Outset(poly Polygon, amount float64) Polygon {
	n := len(poly)
	if n < 3 || amount == 0 {
		out := make(Polygon, n)
		copy(out, poly)
		return out
	}
	// Winding decides which perpendicular points outward.
	sign := 1.0
	if poly.SignedArea() < 0 {
		sign = -1.0
	}

	type edge struct {
		p Point // shifted edge origin
		d Point // edge direction
	}
	edges := make([]edge, n)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		d := b.Sub(a)
		normal := Point{d.Z, -d.X}.Normalize().Scale(sign)
		edges[i] = edge{p: a.Add(normal.Scale(amount)), d: d}
	}

	out := make(Polygon, n)
	for i := 0; i < n; i++ {
		prev := edges[(i+n-1)%n]
		cur := edges[i]
		if pt, ok := LineIntersection(prev.p, prev.d, cur.p, cur.d); ok {
			out[i] = pt
		} else {
			out[i] = cur.p
		}
	}
	return out
}
