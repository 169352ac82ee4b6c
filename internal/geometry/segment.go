package geometry

import "math"

// Epsilon is the tolerance used by overlap tests. Coordinates are in
// meters, so this is a tenth of a millimeter.
const Epsilon = 1e-4

// LineIntersection intersects two infinite lines given in
// point-plus-direction form. Reports false when the lines are near
// parallel; callers fall back to a default point instead of dividing by
// a vanishing determinant.
func LineIntersection(p1, d1, p2, d2 Point) (Point, bool) {
	det := d1.Cross(d2)
	if math.Abs(det) < 1e-9 {
		return Point{}, false
	}
	t := p2.Sub(p1).Cross(d2) / det
	return p1.Add(d1.Scale(t)), true
}

// SegmentsIntersect reports whether two segments cross in their
// interiors, or overlap collinearly over a positive length. Contact at a
// single endpoint (walls meeting at a shared corner) does not count.
func SegmentsIntersect(a1, a2, b1, b2 Point) bool {
	da := a2.Sub(a1)
	db := b2.Sub(b1)

	o1 := da.Cross(b1.Sub(a1))
	o2 := da.Cross(b2.Sub(a1))
	o3 := db.Cross(a1.Sub(b1))
	o4 := db.Cross(a2.Sub(b1))

	// Proper crossing: each segment's endpoints lie strictly on opposite
	// sides of the other segment.
	if ((o1 > Epsilon && o2 < -Epsilon) || (o1 < -Epsilon && o2 > Epsilon)) &&
		((o3 > Epsilon && o4 < -Epsilon) || (o3 < -Epsilon && o4 > Epsilon)) {
		return true
	}

	// Collinear: require an overlap of positive length, not a shared
	// endpoint.
	if math.Abs(o1) <= Epsilon && math.Abs(o2) <= Epsilon &&
		math.Abs(o3) <= Epsilon && math.Abs(o4) <= Epsilon {
		lo1, hi1 := projectOnto(da, a1, a1), projectOnto(da, a1, a2)
		lo2, hi2 := projectOnto(da, a1, b1), projectOnto(da, a1, b2)
		if lo1 > hi1 {
			lo1, hi1 = hi1, lo1
		}
		if lo2 > hi2 {
			lo2, hi2 = hi2, lo2
		}
		overlap := math.Min(hi1, hi2) - math.Max(lo1, lo2)
		return overlap > Epsilon
	}
	return false
}

func projectOnto(dir, origin, p Point) float64 {
	return p.Sub(origin).Dot(dir)
}

// PointSegmentDistance returns the distance from p to the closest point
// on segment ab.
func PointSegmentDistance(p, a, b Point) float64 {
	d := b.Sub(a)
	lenSq := d.Dot(d)
	if lenSq < 1e-12 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(d) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(d.Scale(t)))
}
