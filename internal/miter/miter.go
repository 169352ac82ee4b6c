// Package miter derives the exact corner points wall extrusions must
// use where walls meet, so adjoining footprints form seamless joints
// instead of overlapping or gapping at junctions.
package miter

import (
	"math"
	"sort"

	"github.com/planwright/floorplan-engine/internal/geometry"
	"github.com/planwright/floorplan-engine/internal/scene"
)

// junctionTol groups wall endpoints that coincide to within a
// millimeter.
const junctionTol = 1e-3

// adjacencyTol is the endpoint-to-wall distance under which two walls
// count as connected for regeneration propagation.
const adjacencyTol = 0.1

// EndMiter is the pair of boundary points a wall's footprint should use
// at one end, expressed in world space. Left and right are relative to
// the wall's outgoing direction at that end.
type EndMiter struct {
	Left  geometry.Point `json:"left"`
	Right geometry.Point `json:"right"`
}

// WallMiter carries the miter data for a wall's two ends. A nil end
// means the naive perpendicular offset applies there.
type WallMiter struct {
	Start *EndMiter `json:"start,omitempty"`
	End   *EndMiter `json:"end,omitempty"`
}

type junctionKey struct {
	X int64
	Z int64
}

func keyFor(p geometry.Point) junctionKey {
	return junctionKey{
		X: int64(math.Round(p.X / junctionTol)),
		Z: int64(math.Round(p.Z / junctionTol)),
	}
}

// incoming is one wall arriving at a junction, in the frame of its
// outgoing direction from the junction point.
type incoming struct {
	wall    *scene.WallNode
	atStart bool
	dir     geometry.Point // unit, pointing away from the junction
	angle   float64
	left    geometry.Point // raw left edge point (default/fallback)
	right   geometry.Point // raw right edge point
}

type junction struct {
	point geometry.Point
	walls []incoming
	host  *scene.WallNode
}

// CalculateLevelMiters computes miter data for every wall on a level.
// The pass is pure: it reads the wall set, writes nothing back, and is
// deterministic for a given input, so redundant re-runs are safe.
func CalculateLevelMiters(walls []*scene.WallNode) map[string]*WallMiter {
	junctions := collectJunctions(walls)
	result := make(map[string]*WallMiter)

	// Corner junctions (two or more walls) first: their results take
	// precedence over simple T results for the same wall end.
	for _, j := range junctions {
		if len(j.walls) >= 2 {
			solveCorner(j, result)
		}
	}
	for _, j := range junctions {
		if len(j.walls) == 1 && j.host != nil {
			solveCorner(j, result)
		}
	}
	return result
}

func collectJunctions(walls []*scene.WallNode) []*junction {
	byKey := make(map[junctionKey]*junction)
	var order []junctionKey

	addEnd := func(w *scene.WallNode, p geometry.Point, atStart bool) {
		dir := w.End.Sub(w.Start)
		if !atStart {
			dir = dir.Scale(-1)
		}
		dir = dir.Normalize()
		k := keyFor(p)
		j, ok := byKey[k]
		if !ok {
			j = &junction{point: p}
			byKey[k] = j
			order = append(order, k)
		}
		half := dir.Perp().Scale(w.Thickness / 2)
		j.walls = append(j.walls, incoming{
			wall:    w,
			atStart: atStart,
			dir:     dir,
			angle:   math.Atan2(dir.Z, dir.X),
			left:    p.Add(half),
			right:   p.Sub(half),
		})
	}

	for _, w := range walls {
		if w.Length() < junctionTol {
			continue
		}
		addEnd(w, w.Start, true)
		addEnd(w, w.End, false)
	}

	var out []*junction
	for _, k := range order {
		j := byKey[k]
		// Deterministic fan order: by outgoing angle, ties by id.
		sort.Slice(j.walls, func(a, b int) bool {
			if j.walls[a].angle != j.walls[b].angle {
				return j.walls[a].angle < j.walls[b].angle
			}
			return j.walls[a].wall.ID < j.walls[b].wall.ID
		})
		j.host = findHost(j, walls)
		out = append(out, j)
	}
	return out
}

// findHost returns a wall whose interior passes through the junction
// point. Walls that end at the junction are members, not hosts.
func findHost(j *junction, walls []*scene.WallNode) *scene.WallNode {
	for _, w := range walls {
		if w.Length() < junctionTol {
			continue
		}
		if j.point.Distance(w.Start) < junctionTol || j.point.Distance(w.End) < junctionTol {
			continue
		}
		if geometry.PointSegmentDistance(j.point, w.Start, w.End) < junctionTol {
			return w
		}
	}
	return nil
}

// solveCorner computes the fan of corner points around one junction.
//
// Each incoming wall contributes a left and a right edge line. Walking
// the fan in angle order, each circularly adjacent pair (A, B) shares a
// wedge; how their facing edges (A.left, B.right) close depends on how
// many host half-directions that wedge contains:
//
//	0 — plain corner: intersect the two edge lines.
//	1 — the pair straddles the host: the edges meet at one interior
//	    point, inside the host's thickness.
//	2 — the wedge spans the whole host: each edge is the fan's
//	    outermost on its side and clips to the host's near face.
//
// With no host every wedge counts 0 and the fan closes watertight; a
// lone wall against a host counts 2 and butt-joins flush to the facing
// host face. Near-parallel intersections fall back to the raw offset
// points instead of blowing up on a vanishing determinant.
func solveCorner(j *junction, result map[string]*WallMiter) {
	n := len(j.walls)
	corners := make([]EndMiter, n)
	for i, in := range j.walls {
		corners[i] = EndMiter{Left: in.left, Right: in.right}
	}

	var hostDirs []float64
	var hostPerp geometry.Point
	if j.host != nil {
		hd := j.host.End.Sub(j.host.Start).Normalize()
		hostDirs = []float64{math.Atan2(hd.Z, hd.X), math.Atan2(-hd.Z, -hd.X)}
		hostPerp = hd.Perp()
	}

	for i := 0; i < n; i++ {
		a := j.walls[i]
		b := j.walls[(i+1)%n]

		span := math.Mod(b.angle-a.angle+4*math.Pi, 2*math.Pi)
		if n == 1 {
			span = 2 * math.Pi
		}
		crossings := 0
		for _, hd := range hostDirs {
			if angleInWedge(hd, a.angle, span) {
				crossings++
			}
		}

		switch {
		case crossings >= 2 || (j.host != nil && n == 1):
			// Outermost edges: butt-join each against its own near
			// host face.
			corners[i].Left = clipToHostFace(j, a, a.left, hostPerp)
			corners[(i+1)%n].Right = clipToHostFace(j, b, b.right, hostPerp)
		default:
			// Plain corner, or an opposite-side pair meeting at one
			// interior point through the host thickness.
			if pt, ok := geometry.LineIntersection(a.left, a.dir, b.right, b.dir); ok {
				corners[i].Left = pt
				corners[(i+1)%n].Right = pt
			}
		}
	}

	for i, in := range j.walls {
		em := corners[i]
		wm := result[in.wall.ID]
		if wm == nil {
			wm = &WallMiter{}
			result[in.wall.ID] = wm
		}
		if in.atStart {
			if wm.Start == nil {
				wm.Start = &em
			}
		} else {
			if wm.End == nil {
				wm.End = &em
			}
		}
	}
}

// clipToHostFace intersects a wall edge line with the host face on the
// wall's side of the host. Parallel edges keep the raw offset point.
func clipToHostFace(j *junction, in incoming, edgePoint geometry.Point, hostPerp geometry.Point) geometry.Point {
	side := 1.0
	if in.dir.Dot(hostPerp) < 0 {
		side = -1.0
	}
	facePoint := j.host.Start.Add(hostPerp.Scale(side * j.host.Thickness / 2))
	faceDir := j.host.End.Sub(j.host.Start)
	if pt, ok := geometry.LineIntersection(edgePoint, in.dir, facePoint, faceDir); ok {
		return pt
	}
	return edgePoint
}

// angleInWedge reports whether angle theta lies strictly inside the CCW
// wedge starting at from with the given span.
func angleInWedge(theta, from, span float64) bool {
	d := math.Mod(theta-from+4*math.Pi, 2*math.Pi)
	return d > 1e-9 && d < span-1e-9
}

// AdjacentWallIDs returns the walls connected to the given wall: walls
// sharing an endpoint with it, and walls whose body its endpoints touch
// (or vice versa). Geometry regeneration refreshes these neighbors when
// the wall moves, because their miters depend on it.
func AdjacentWallIDs(wall *scene.WallNode, all []*scene.WallNode) []string {
	if wall == nil {
		return nil
	}
	var out []string
	for _, other := range all {
		if other.ID == wall.ID {
			continue
		}
		if wallsTouch(wall, other) {
			out = append(out, other.ID)
		}
	}
	sort.Strings(out)
	return out
}

func wallsTouch(a, b *scene.WallNode) bool {
	for _, p := range []geometry.Point{a.Start, a.End} {
		if geometry.PointSegmentDistance(p, b.Start, b.End) <= adjacencyTol {
			return true
		}
	}
	for _, p := range []geometry.Point{b.Start, b.End} {
		if geometry.PointSegmentDistance(p, a.Start, a.End) <= adjacencyTol {
			return true
		}
	}
	return false
}
