package geometry

import (
	"math"
	"testing"
)

func TestPointInPolygon_Square(t *testing.T) {
	square := Polygon{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	if !PointInPolygon(5, 5, square) {
		t.Fatalf("expected (5,5) inside 10x10 square")
	}
	if PointInPolygon(15, 5, square) {
		t.Fatalf("expected (15,5) outside 10x10 square")
	}
	// Boundary behavior is implementation-defined but must be stable.
	first := PointInPolygon(0, 5, square)
	for i := 0; i < 10; i++ {
		if PointInPolygon(0, 5, square) != first {
			t.Fatalf("boundary containment not deterministic")
		}
	}
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	if PointInPolygon(0, 0, Polygon{Pt(0, 0), Pt(1, 1)}) {
		t.Fatalf("two-point polygon must contain nothing")
	}
	if PointInPolygon(0, 0, nil) {
		t.Fatalf("nil polygon must contain nothing")
	}
}

func TestSegmentsIntersect_CrossingDiagonals(t *testing.T) {
	if !SegmentsIntersect(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0)) {
		t.Fatalf("crossing diagonals must intersect")
	}
}

func TestSegmentsIntersect_SharedEndpointOnly(t *testing.T) {
	if SegmentsIntersect(Pt(0, 0), Pt(5, 5), Pt(5, 5), Pt(10, 0)) {
		t.Fatalf("corner touch must not count as intersection")
	}
}

func TestSegmentsIntersect_CollinearOverlap(t *testing.T) {
	if !SegmentsIntersect(Pt(0, 0), Pt(6, 0), Pt(4, 0), Pt(10, 0)) {
		t.Fatalf("collinear positive-length overlap must intersect")
	}
	if SegmentsIntersect(Pt(0, 0), Pt(5, 0), Pt(5, 0), Pt(10, 0)) {
		t.Fatalf("collinear endpoint contact must not intersect")
	}
	if SegmentsIntersect(Pt(0, 0), Pt(4, 0), Pt(5, 0), Pt(10, 0)) {
		t.Fatalf("disjoint collinear segments must not intersect")
	}
}

func TestLineIntersection_Parallel(t *testing.T) {
	if _, ok := LineIntersection(Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(2, 0)); ok {
		t.Fatalf("parallel lines must report no intersection")
	}
	pt, ok := LineIntersection(Pt(0, 0), Pt(1, 1), Pt(0, 10), Pt(1, -1))
	if !ok {
		t.Fatalf("crossing lines must intersect")
	}
	if math.Abs(pt.X-5) > 1e-9 || math.Abs(pt.Z-5) > 1e-9 {
		t.Fatalf("expected (5,5), got (%v,%v)", pt.X, pt.Z)
	}
}

func TestItemFootprint_AxisAligned(t *testing.T) {
	fp := ItemFootprint(Pt(1, 2), 2, 4, 0, 0)
	min, max := fp.Bounds()
	if math.Abs(min.X-0) > 1e-9 || math.Abs(max.X-2) > 1e-9 {
		t.Fatalf("unexpected x extent: %v..%v", min.X, max.X)
	}
	if math.Abs(min.Z-0) > 1e-9 || math.Abs(max.Z-4) > 1e-9 {
		t.Fatalf("unexpected z extent: %v..%v", min.Z, max.Z)
	}
}

func TestItemFootprint_RotatedAndInset(t *testing.T) {
	fp := ItemFootprint(Pt(0, 0), 4, 2, math.Pi/2, 0)
	min, max := fp.Bounds()
	// A quarter turn swaps the extents.
	if math.Abs(max.X-min.X-2) > 1e-9 || math.Abs(max.Z-min.Z-4) > 1e-9 {
		t.Fatalf("rotation did not swap extents: %v %v", max.X-min.X, max.Z-min.Z)
	}

	// Inset larger than the half extent clamps to a point.
	fp = ItemFootprint(Pt(0, 0), 1, 1, 0, 2)
	for _, c := range fp {
		if c.Distance(Pt(0, 0)) > 1e-9 {
			t.Fatalf("oversized inset must clamp to the center, got %+v", c)
		}
	}
}

func TestPolygonsOverlap_Containment(t *testing.T) {
	outer := Polygon{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	inner := Polygon{Pt(4, 4), Pt(6, 4), Pt(6, 6), Pt(4, 6)}
	if !PolygonsOverlap(outer, inner) {
		t.Fatalf("contained polygon must overlap")
	}
	if !PolygonsOverlap(inner, outer) {
		t.Fatalf("containment must be symmetric")
	}
	far := Polygon{Pt(20, 20), Pt(22, 20), Pt(22, 22), Pt(20, 22)}
	if PolygonsOverlap(outer, far) {
		t.Fatalf("disjoint polygons must not overlap")
	}
}

func TestWallOverlapsPolygon(t *testing.T) {
	room := Polygon{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	if !WallOverlapsPolygon(Pt(-2, 5), Pt(12, 5), 0.2, room) {
		t.Fatalf("wall through room must overlap")
	}
	if WallOverlapsPolygon(Pt(-5, -5), Pt(-5, 20), 0.2, room) {
		t.Fatalf("distant wall must not overlap")
	}
	if WallOverlapsPolygon(Pt(3, 3), Pt(3, 3), 0.2, room) {
		t.Fatalf("degenerate wall must not overlap")
	}
}

func TestOutset_SquareGrows(t *testing.T) {
	square := Polygon{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	grown := Outset(square, 1)
	if len(grown) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(grown))
	}
	min, max := grown.Bounds()
	if math.Abs(min.X+1) > 1e-9 || math.Abs(max.X-11) > 1e-9 ||
		math.Abs(min.Z+1) > 1e-9 || math.Abs(max.Z-11) > 1e-9 {
		t.Fatalf("outset square has wrong bounds: %+v %+v", min, max)
	}
	// Winding direction must not change the outward sense.
	cw := Polygon{Pt(0, 10), Pt(10, 10), Pt(10, 0), Pt(0, 0)}
	grown = Outset(cw, 1)
	min, max = grown.Bounds()
	if math.Abs(min.X+1) > 1e-9 || math.Abs(max.X-11) > 1e-9 {
		t.Fatalf("clockwise outset went inward: %+v %+v", min, max)
	}
}

func TestPointSegmentDistance(t *testing.T) {
	if d := PointSegmentDistance(Pt(5, 3), Pt(0, 0), Pt(10, 0)); math.Abs(d-3) > 1e-9 {
		t.Fatalf("expected distance 3, got %v", d)
	}
	if d := PointSegmentDistance(Pt(-4, 0), Pt(0, 0), Pt(10, 0)); math.Abs(d-4) > 1e-9 {
		t.Fatalf("expected clamped distance 4, got %v", d)
	}
}
