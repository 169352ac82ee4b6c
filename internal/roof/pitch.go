// Package roof solves the slope angle of a pitched roof from its
// rise/run/thickness constraint and derives the layered 2D cross
// section used to extrude the roof. Extrusion itself is a rendering
// concern and happens elsewhere.
package roof

import (
	"math"

	"github.com/planwright/floorplan-engine/internal/geometry"
)

// flatRunThreshold treats near-zero runs as flat roofs.
const flatRunThreshold = 0.01

// SolvePitch finds the angle a satisfying
//
//	run*tan(a) + (thicknessA+thicknessB)/cos(a) = rise
//
// via R = sqrt(run^2+rise^2), phi = atan2(rise, run) and
// a = phi - asin((thicknessA+thicknessB)/R).
//
// Degenerate inputs keep callers out of NaN territory: a run below
// flatRunThreshold is flat (angle 0), and when the combined thickness
// exceeds the rise/run diagonal the exact equation has no solution, so
// the half-angle phi/2 is returned as a documented approximation.
// The result is clamped at 0; a roof never pitches downward.
func SolvePitch(rise, run, thicknessA, thicknessB float64) float64 {
	if run < flatRunThreshold {
		return 0
	}
	total := thicknessA + thicknessB
	r := math.Hypot(run, rise)
	phi := math.Atan2(rise, run)
	if r <= total {
		return math.Max(0, phi*0.5)
	}
	return math.Max(0, phi-math.Asin(total/r))
}

// Profile is the layered cross section of one roof slope in the
// (horizontal-run, vertical) plane: X advances toward the ridge, Z is
// height above the eave support. Each layer is a closed 2D polyline
// handed to the extrusion layer as-is.
type Profile struct {
	Angle     float64          `json:"angle"`
	Cover     geometry.Polygon `json:"cover"`
	Structure geometry.Polygon `json:"structure"`
	SideWall  geometry.Polygon `json:"sideWall"`
	Gable     geometry.Polygon `json:"gable"`
}

// SolveProfile derives the cross-section layers for a slope with the
// given constraint. coverThickness sits on top of structureThickness,
// measured perpendicular to the slope; sideWallHeight is the vertical
// fascia below the eave.
func SolveProfile(rise, run, coverThickness, structureThickness, sideWallHeight float64) Profile {
	angle := SolvePitch(rise, run, coverThickness, structureThickness)
	c := math.Cos(angle)
	s := math.Sin(angle)

	// Slope frame: d climbs the slope, n is its upward normal.
	d := geometry.Pt(c, s)
	n := geometry.Pt(-s, c)

	slopeLen := run
	if c > 1e-9 {
		slopeLen = run / c
	}

	layer := func(base geometry.Point, thickness float64) geometry.Polygon {
		top := base.Add(n.Scale(thickness))
		return geometry.Polygon{
			base,
			base.Add(d.Scale(slopeLen)),
			top.Add(d.Scale(slopeLen)),
			top,
		}
	}

	structureBase := geometry.Pt(0, 0)
	coverBase := n.Scale(structureThickness)

	profile := Profile{
		Angle:     angle,
		Structure: layer(structureBase, structureThickness),
		Cover:     layer(coverBase, coverThickness),
	}

	if sideWallHeight > 0 {
		// Vertical fascia closing the eave end of both layers.
		top := n.Scale(structureThickness + coverThickness)
		profile.SideWall = geometry.Polygon{
			geometry.Pt(0, -sideWallHeight),
			geometry.Pt(top.X, -sideWallHeight),
			top,
			geometry.Pt(0, 0),
		}
	}

	// Gable infill: the triangle under the structure layer.
	ridgeHeight := run * math.Tan(angle)
	if ridgeHeight > 1e-9 {
		profile.Gable = geometry.Polygon{
			geometry.Pt(0, 0),
			geometry.Pt(run, 0),
			geometry.Pt(run, ridgeHeight),
		}
	}

	return profile
}
