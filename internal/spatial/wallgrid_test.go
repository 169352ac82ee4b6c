package spatial

import (
	"math"
	"testing"

	"github.com/planwright/floorplan-engine/internal/scene"
)

func TestWallGrid_AdjacentRangesDoNotConflict(t *testing.T) {
	g := NewWallGrid()
	// 1m item centered at t=0.25 on a 4m wall: spans t 0.125..0.375.
	g.Insert(WallPlacement{
		ItemID: "a", WallID: "w1",
		TStart: 0.125, TEnd: 0.375,
		YStart: 1, YEnd: 2,
		AttachType: scene.AttachWall,
	})

	// Horizontally touching neighbor.
	res := g.CanPlace("w1", 4, 2.5, 0.5, 1, 1, 1, scene.AttachWall, scene.SideNone, nil)
	if !res.Valid {
		t.Fatalf("touching t ranges must not conflict: %+v", res)
	}

	// Same span, non-overlapping heights.
	res = g.CanPlace("w1", 4, 2.5, 0.25, 1, 2.0, 0.4, scene.AttachWall, scene.SideNone, nil)
	if !res.Valid {
		t.Fatalf("stacked height ranges must not conflict: %+v", res)
	}

	// Genuine overlap.
	res = g.CanPlace("w1", 4, 2.5, 0.3, 1, 1.5, 1, scene.AttachWall, scene.SideNone, nil)
	if res.Valid {
		t.Fatalf("overlapping full-wall items must conflict")
	}
	if len(res.ConflictIDs) != 1 || res.ConflictIDs[0] != "a" {
		t.Fatalf("expected conflict with a, got %v", res.ConflictIDs)
	}
}

func TestWallGrid_SideSemantics(t *testing.T) {
	g := NewWallGrid()
	g.Insert(WallPlacement{
		ItemID: "front-shelf", WallID: "w1",
		TStart: 0.4, TEnd: 0.6, YStart: 1, YEnd: 1.5,
		AttachType: scene.AttachWallSide, Side: scene.SideFront,
	})

	// Opposite face of a side-attached item is free.
	res := g.CanPlace("w1", 5, 2.5, 0.5, 1, 1, 0.5, scene.AttachWallSide, scene.SideBack, nil)
	if !res.Valid {
		t.Fatalf("opposite side must not conflict: %+v", res)
	}

	// Same face conflicts.
	res = g.CanPlace("w1", 5, 2.5, 0.5, 1, 1, 0.5, scene.AttachWallSide, scene.SideFront, nil)
	if res.Valid {
		t.Fatalf("same side must conflict")
	}

	// A full-wall attachment occupies both faces.
	res = g.CanPlace("w1", 5, 2.5, 0.5, 1, 1, 0.5, scene.AttachWall, scene.SideNone, nil)
	if res.Valid {
		t.Fatalf("full-wall item must conflict with a side item")
	}

	// An unspecified side is conservatively both faces.
	res = g.CanPlace("w1", 5, 2.5, 0.5, 1, 1, 0.5, scene.AttachWallSide, scene.SideNone, nil)
	if res.Valid {
		t.Fatalf("unspecified side must conflict")
	}
}

func TestWallGrid_VerticalAutoAdjust(t *testing.T) {
	g := NewWallGrid()

	res := g.CanPlace("w1", 4, 2.5, 0.5, 1, -0.5, 1, scene.AttachWall, scene.SideNone, nil)
	if !res.Valid || !res.WasAdjusted {
		t.Fatalf("below-floor request must be adjusted: %+v", res)
	}
	if math.Abs(res.AdjustedY-0.05) > 1e-9 {
		t.Fatalf("expected yBottom snapped to 0.05, got %v", res.AdjustedY)
	}

	res = g.CanPlace("w1", 4, 2.5, 0.5, 1, 2.0, 1, scene.AttachWall, scene.SideNone, nil)
	if !res.Valid || !res.WasAdjusted {
		t.Fatalf("above-wall request must be adjusted: %+v", res)
	}
	if math.Abs(res.AdjustedY-1.45) > 1e-9 {
		t.Fatalf("expected yBottom snapped to 1.45, got %v", res.AdjustedY)
	}

	res = g.CanPlace("w1", 4, 2.5, 0.5, 1, 1.0, 1, scene.AttachWall, scene.SideNone, nil)
	if res.WasAdjusted {
		t.Fatalf("in-bounds request must not be adjusted")
	}
}

func TestWallGrid_HorizontalOutOfBoundsRejects(t *testing.T) {
	g := NewWallGrid()
	// 2m item centered at t=0.9 on a 4m wall runs past the end.
	res := g.CanPlace("w1", 4, 2.5, 0.9, 2, 1, 0.5, scene.AttachWall, scene.SideNone, nil)
	if res.Valid {
		t.Fatalf("span past the wall end must reject")
	}
	// Zero-length wall always rejects.
	res = g.CanPlace("w0", 0, 2.5, 0.5, 0.5, 1, 0.5, scene.AttachWall, scene.SideNone, nil)
	if res.Valid {
		t.Fatalf("zero-length wall must reject")
	}
}

func TestWallGrid_RemoveWallReturnsOrphans(t *testing.T) {
	g := NewWallGrid()
	g.Insert(WallPlacement{ItemID: "a", WallID: "w1", TStart: 0.1, TEnd: 0.2, YStart: 0, YEnd: 1, AttachType: scene.AttachWall})
	g.Insert(WallPlacement{ItemID: "b", WallID: "w1", TStart: 0.5, TEnd: 0.6, YStart: 0, YEnd: 1, AttachType: scene.AttachWall})
	g.Insert(WallPlacement{ItemID: "c", WallID: "w2", TStart: 0.5, TEnd: 0.6, YStart: 0, YEnd: 1, AttachType: scene.AttachWall})

	orphans := g.RemoveWall("w1")
	if len(orphans) != 2 {
		t.Fatalf("expected 2 orphans, got %v", orphans)
	}
	if len(g.Placements("w1")) != 0 {
		t.Fatalf("w1 placements must be gone")
	}
	if len(g.Placements("w2")) != 1 {
		t.Fatalf("w2 must be untouched")
	}
	// Item ids from the removed wall are fully unindexed.
	g.RemoveByItemID("a")
}
