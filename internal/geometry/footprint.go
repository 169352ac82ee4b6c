package geometry

import "math"

// ItemFootprint returns the four corners of a Y-rotated rectangle
// centered at (x, z) with the given width and depth. The inset shrinks
// the half-extents, clamped at zero, so placement tests can ignore a
// thin border of the item.
func ItemFootprint(center Point, width, depth, rotationY, inset float64) Polygon {
	hw := math.Max(0, width/2-inset)
	hd := math.Max(0, depth/2-inset)
	corners := [4]Point{
		{-hw, -hd},
		{hw, -hd},
		{hw, hd},
		{-hw, hd},
	}
	out := make(Polygon, 4)
	for i, c := range corners {
		out[i] = c.RotateY(rotationY).Add(center)
	}
	return out
}

// WallFootprint returns the rectangle a wall of the given thickness
// occupies between its endpoints. A zero-length wall yields nil.
func WallFootprint(start, end Point, thickness float64) Polygon {
	dir := end.Sub(start)
	if dir.Length() < 1e-9 {
		return nil
	}
	half := dir.Normalize().Perp().Scale(thickness / 2)
	return Polygon{
		start.Add(half),
		end.Add(half),
		end.Sub(half),
		start.Sub(half),
	}
}

// PolygonsOverlap reports whether two polygons share any area: a vertex
// of one inside the other (covering full containment) or any pair of
// edges crossing.
func PolygonsOverlap(a, b Polygon) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	for _, v := range a {
		if PointInPolygon(v.X, v.Z, b) {
			return true
		}
	}
	for _, v := range b {
		if PointInPolygon(v.X, v.Z, a) {
			return true
		}
	}
	na := len(a)
	nb := len(b)
	for i := 0; i < na; i++ {
		a1 := a[i]
		a2 := a[(i+1)%na]
		for j := 0; j < nb; j++ {
			if SegmentsIntersect(a1, a2, b[j], b[(j+1)%nb]) {
				return true
			}
		}
	}
	return false
}

// ItemOverlapsPolygon tests a rotated item footprint against a polygon.
func ItemOverlapsPolygon(center Point, width, depth, rotationY float64, poly Polygon) bool {
	return PolygonsOverlap(ItemFootprint(center, width, depth, rotationY, 0), poly)
}

// WallOverlapsPolygon tests a wall's thickness rectangle against a
// polygon. Degenerate walls overlap nothing.
func WallOverlapsPolygon(start, end Point, thickness float64, poly Polygon) bool {
	return PolygonsOverlap(WallFootprint(start, end, thickness), poly)
}
