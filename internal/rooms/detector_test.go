package rooms

import (
	"testing"

	"github.com/planwright/floorplan-engine/internal/geometry"
	"github.com/planwright/floorplan-engine/internal/scene"
)

func wall(id string, x1, z1, x2, z2 float64) *scene.WallNode {
	return &scene.WallNode{
		Base:      scene.Base{ID: id},
		Start:     geometry.Pt(x1, z1),
		End:       geometry.Pt(x2, z2),
		Thickness: 0.2,
		Height:    2.5,
	}
}

// squareWalls is the default-scene square: (0,0)-(5,0)-(5,5)-(0,5).
func squareWalls() []*scene.WallNode {
	return []*scene.WallNode{
		wall("south", 0, 0, 5, 0),
		wall("east", 5, 0, 5, 5),
		wall("north", 5, 5, 0, 5),
		wall("west", 0, 5, 0, 0),
	}
}

func TestDetect_ClosedSquareIsOneRoom(t *testing.T) {
	d := NewDetector(0.25)
	res := d.Detect("level-1", squareWalls())

	if len(res.Rooms) != 1 {
		t.Fatalf("expected exactly one room, got %d", len(res.Rooms))
	}
	room := res.Rooms[0]
	if room.IsExterior {
		t.Fatalf("detected room must not be exterior")
	}
	if room.LevelID != "level-1" {
		t.Fatalf("room carries the wrong level: %q", room.LevelID)
	}
	// The bounding polygon encloses the room center.
	if !geometry.PointInPolygon(2.5, 2.5, room.Polygon) {
		t.Fatalf("room polygon must contain the square center: %+v", room.Polygon)
	}
	if len(room.WallIDs) != 4 {
		t.Fatalf("room must face all four walls, got %v", room.WallIDs)
	}
	want := []string{"east", "north", "south", "west"}
	for i, id := range want {
		if room.WallIDs[i] != id {
			t.Fatalf("room wall ids = %v, want %v", room.WallIDs, want)
		}
	}
}

func TestDetect_WallSidesOfClosedSquare(t *testing.T) {
	d := NewDetector(0.25)
	res := d.Detect("level-1", squareWalls())

	// Walking the square counterclockwise, every wall's front face
	// (its left-hand perpendicular) points into the room.
	for _, id := range []string{"south", "east", "north", "west"} {
		sides, ok := res.WallSides[id]
		if !ok {
			t.Fatalf("wall %s missing from side classification", id)
		}
		if sides.FrontSide != SideInterior {
			t.Fatalf("wall %s front must be interior, got %s", id, sides.FrontSide)
		}
		if sides.BackSide != SideExterior {
			t.Fatalf("wall %s back must be exterior, got %s", id, sides.BackSide)
		}
	}
}

func TestDetect_OpenWallsYieldNoRoom(t *testing.T) {
	d := NewDetector(0.25)
	res := d.Detect("level-1", []*scene.WallNode{
		wall("a", 0, 0, 5, 0),
		wall("b", 5, 0, 5, 5),
	})
	if len(res.Rooms) != 0 {
		t.Fatalf("an open corner cannot enclose a room, got %d", len(res.Rooms))
	}
	// Both faces of an L in open space see the exterior.
	if s := res.WallSides["a"]; s.FrontSide != SideExterior || s.BackSide != SideExterior {
		t.Fatalf("open wall faces must be exterior: %+v", s)
	}
}

func TestDetect_TwoRoomsSplitByPartition(t *testing.T) {
	walls := append(squareWalls(), wall("partition", 2.5, 0, 2.5, 5))
	d := NewDetector(0.25)
	res := d.Detect("level-1", walls)

	if len(res.Rooms) != 2 {
		t.Fatalf("partitioned square must yield two rooms, got %d", len(res.Rooms))
	}
	// The partition has rooms on both faces.
	if s := res.WallSides["partition"]; s.FrontSide != SideInterior || s.BackSide != SideInterior {
		t.Fatalf("partition must be interior on both faces: %+v", s)
	}
}

func TestDetect_DegenerateAndEmptyInputs(t *testing.T) {
	d := NewDetector(0.25)
	res := d.Detect("level-1", nil)
	if len(res.Rooms) != 0 || len(res.WallSides) != 0 {
		t.Fatalf("no walls, no output: %+v", res)
	}
	res = d.Detect("level-1", []*scene.WallNode{wall("zero", 1, 1, 1, 1)})
	if len(res.Rooms) != 0 {
		t.Fatalf("a zero-length wall encloses nothing")
	}
	if s := res.WallSides["zero"]; s.FrontSide != SideUnknown || s.BackSide != SideUnknown {
		t.Fatalf("degenerate wall sides must be unknown: %+v", s)
	}
}

func TestShouldRedetect_ConnectivityGate(t *testing.T) {
	d := NewDetector(0.25)
	walls := squareWalls()

	// No snapshot yet: any walls warrant a first pass.
	if !d.ShouldRedetect("level-1", walls) {
		t.Fatalf("first pass must run")
	}
	d.Detect("level-1", walls)

	// Unchanged set: nothing to do.
	if d.ShouldRedetect("level-1", walls) {
		t.Fatalf("unchanged wall set must not re-run")
	}

	// An isolated wall far from everything does not gate a pass.
	isolated := append(append([]*scene.WallNode{}, walls...), wall("island", 20, 20, 25, 20))
	if d.ShouldRedetect("level-1", isolated) {
		t.Fatalf("isolated wall must not trigger re-detection")
	}

	// A wall landing within the touch threshold of an endpoint does.
	touching := append(append([]*scene.WallNode{}, walls...), wall("spur", 5.05, 0, 8, 0))
	if !d.ShouldRedetect("level-1", touching) {
		t.Fatalf("touching wall must trigger re-detection")
	}

	// Removing a connected wall triggers; removing after snapshotting
	// the isolated wall does not.
	d.Detect("level-1", isolated)
	if d.ShouldRedetect("level-1", walls) {
		t.Fatalf("removing the isolated wall must not trigger")
	}
	withoutEast := []*scene.WallNode{walls[0], walls[2], walls[3]}
	if !d.ShouldRedetect("level-1", withoutEast) {
		t.Fatalf("removing a connected wall must trigger")
	}

	// Moving a connected wall away triggers: its old position touched
	// the rest even if the new one does not.
	d.Detect("level-1", walls)
	moved := []*scene.WallNode{walls[0], wall("east", 8, 0, 8, 5), walls[2], walls[3]}
	if !d.ShouldRedetect("level-1", moved) {
		t.Fatalf("moving a connected wall must trigger")
	}

	// Nudging the isolated island stays gated.
	d.Detect("level-1", isolated)
	nudged := append(append([]*scene.WallNode{}, walls...), wall("island", 21, 20, 26, 20))
	if d.ShouldRedetect("level-1", nudged) {
		t.Fatalf("moving an isolated wall must not trigger")
	}
}

func TestWallTouchesOthers(t *testing.T) {
	base := wall("base", 0, 0, 5, 0)
	near := wall("near", 5.05, 0, 8, 0)
	far := wall("far", 10, 10, 15, 10)
	if !WallTouchesOthers(near, []*scene.WallNode{base}) {
		t.Fatalf("wall within 0.1m must touch")
	}
	if WallTouchesOthers(far, []*scene.WallNode{base}) {
		t.Fatalf("distant wall must not touch")
	}
	if WallTouchesOthers(base, []*scene.WallNode{base}) {
		t.Fatalf("a wall does not touch itself")
	}
}
