// Package rooms partitions a level into interior spaces by rasterizing
// its walls onto an occupancy grid and flood-filling: everything
// reachable from the grid boundary is exterior, each remaining
// connected component is a room.
package rooms

import (
	"fmt"
	"sort"

	"github.com/planwright/floorplan-engine/internal/geometry"
	"github.com/planwright/floorplan-engine/internal/scene"
)

// Cell states. Non-negative values are room ids.
const (
	cellEmpty    = -1
	cellWall     = -2
	cellExterior = -3
)

// DefaultResolution is the occupancy grid cell size in meters.
const DefaultResolution = 0.25

// gridPadding extends the grid past the wall bounding box so the
// boundary ring is always open space.
const gridPadding = 2.0

// touchThreshold is the endpoint-to-wall distance under which walls
// count as connected for the re-detection gate.
const touchThreshold = 0.1

// SideClass labels one face of a wall.
type SideClass string

const (
	SideInterior SideClass = "interior"
	SideExterior SideClass = "exterior"
	SideUnknown  SideClass = "unknown"
)

// Room is one detected interior space. Polygon is the bounding box of
// the flood-filled cells, not a traced boundary; non-rectangular rooms
// are over-approximated. That is a known limitation carried over
// deliberately.
type Room struct {
	ID         string           `json:"id"`
	LevelID    string           `json:"levelId"`
	Polygon    geometry.Polygon `json:"polygon"`
	WallIDs    []string         `json:"wallIds"`
	IsExterior bool             `json:"isExterior"`
}

// WallSides classifies the two faces of a wall. Front is the face on
// the side of the wall's left perpendicular (direction rotated 90
// degrees counterclockwise).
type WallSides struct {
	FrontSide SideClass `json:"frontSide"`
	BackSide  SideClass `json:"backSide"`
}

// Result is one detection pass over a level.
type Result struct {
	Rooms     []Room
	WallSides map[string]WallSides
}

type wallSnap struct {
	start     geometry.Point
	end       geometry.Point
	thickness float64
}

// Detector runs room detection per level. The only state carried
// between runs is the previous wall snapshot per level, used by
// ShouldRedetect to skip passes that cannot change the topology.
type Detector struct {
	resolution float64
	prev       map[string]map[string]wallSnap
}

// NewDetector returns a detector with the given grid resolution,
// clamped into the supported 0.1..0.5m band.
func NewDetector(resolution float64) *Detector {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if resolution < 0.1 {
		resolution = 0.1
	}
	if resolution > 0.5 {
		resolution = 0.5
	}
	return &Detector{
		resolution: resolution,
		prev:       make(map[string]map[string]wallSnap),
	}
}

// WallTouchesOthers reports whether a wall connects to any wall in
// others: some endpoint of one lies within touchThreshold of the
// other's segment.
func WallTouchesOthers(wall *scene.WallNode, others []*scene.WallNode) bool {
	if wall == nil {
		return false
	}
	return snapTouches(wallSnap{start: wall.Start, end: wall.End, thickness: wall.Thickness}, others, wall.ID)
}

func snapTouches(s wallSnap, others []*scene.WallNode, selfID string) bool {
	for _, o := range others {
		if o.ID == selfID {
			continue
		}
		for _, p := range []geometry.Point{s.start, s.end} {
			if geometry.PointSegmentDistance(p, o.Start, o.End) <= touchThreshold {
				return true
			}
		}
		for _, p := range []geometry.Point{o.Start, o.End} {
			if geometry.PointSegmentDistance(p, s.start, s.end) <= touchThreshold {
				return true
			}
		}
	}
	return false
}

// ShouldRedetect compares the level's wall set against the snapshot of
// the last Detect pass. Walls that appeared, moved or disappeared only
// trigger a new pass when they connect to the rest of the wall set; an
// isolated wall cannot open or close a room.
func (d *Detector) ShouldRedetect(levelID string, walls []*scene.WallNode) bool {
	prev, hasPrev := d.prev[levelID]
	if !hasPrev {
		return len(walls) > 0
	}
	cur := make(map[string]*scene.WallNode, len(walls))
	for _, w := range walls {
		cur[w.ID] = w
	}
	for id, w := range cur {
		snap, existed := prev[id]
		if !existed {
			if WallTouchesOthers(w, walls) {
				return true
			}
			continue
		}
		// A moved wall matters if it connects at either its old or
		// its new position.
		if snap.start != w.Start || snap.end != w.End || snap.thickness != w.Thickness {
			if WallTouchesOthers(w, walls) || snapTouches(snap, walls, id) {
				return true
			}
		}
	}
	for id, snap := range prev {
		if _, still := cur[id]; !still {
			if snapTouches(snap, walls, id) {
				return true
			}
		}
	}
	return false
}

// Detect runs a full pass for one level and refreshes the snapshot.
func (d *Detector) Detect(levelID string, walls []*scene.WallNode) Result {
	snap := make(map[string]wallSnap, len(walls))
	live := make([]*scene.WallNode, 0, len(walls))
	for _, w := range walls {
		snap[w.ID] = wallSnap{start: w.Start, end: w.End, thickness: w.Thickness}
		if w.Length() >= 1e-6 {
			live = append(live, w)
		}
	}
	d.prev[levelID] = snap

	result := Result{WallSides: make(map[string]WallSides, len(walls))}
	for _, w := range walls {
		result.WallSides[w.ID] = WallSides{FrontSide: SideUnknown, BackSide: SideUnknown}
	}
	if len(live) == 0 {
		return result
	}

	g := newOccupancyGrid(live, d.resolution)
	g.rasterize(live)
	g.fillExterior()
	roomCount := g.fillRooms()

	for id := 0; id < roomCount; id++ {
		lo, hi := g.roomBounds(id)
		result.Rooms = append(result.Rooms, Room{
			ID:      fmt.Sprintf("room-%s-%d", levelID, id),
			LevelID: levelID,
			Polygon: geometry.Polygon{
				lo,
				geometry.Pt(hi.X, lo.Z),
				hi,
				geometry.Pt(lo.X, hi.Z),
			},
			WallIDs: []string{},
		})
	}

	for _, w := range live {
		sides, faced := g.classifyWall(w)
		result.WallSides[w.ID] = sides
		for _, id := range faced {
			result.Rooms[id].WallIDs = append(result.Rooms[id].WallIDs, w.ID)
		}
	}
	for i := range result.Rooms {
		sort.Strings(result.Rooms[i].WallIDs)
	}
	return result
}
