package scene

import (
	"testing"

	"github.com/planwright/floorplan-engine/internal/geometry"
)

func addLevel(t *testing.T, s *Store, id string) *LevelNode {
	t.Helper()
	lvl := &LevelNode{Base: Base{ID: id}, Level: 0}
	if err := s.Add(lvl); err != nil {
		t.Fatalf("add level: %v", err)
	}
	return lvl
}

func TestStore_AddAssignsID(t *testing.T) {
	s := NewStore()
	w := &WallNode{Start: geometry.Pt(0, 0), End: geometry.Pt(5, 0), Thickness: 0.2, Height: 2.5}
	if err := s.Add(w); err != nil {
		t.Fatalf("add: %v", err)
	}
	if w.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if _, ok := s.Get(w.ID); !ok {
		t.Fatalf("node not retrievable by generated id")
	}
}

func TestStore_ParentMustExist(t *testing.T) {
	s := NewStore()
	w := &WallNode{Base: Base{ID: "w1", ParentID: "missing"}}
	if err := s.Add(w); err == nil {
		t.Fatalf("expected error for unknown parent")
	}
}

func TestStore_ChildrenOrderAndCascadeDelete(t *testing.T) {
	s := NewStore()
	addLevel(t, s, "level-1")
	wall := &WallNode{Base: Base{ID: "w1", ParentID: "level-1"}, End: geometry.Pt(5, 0)}
	if err := s.Add(wall); err != nil {
		t.Fatalf("add wall: %v", err)
	}
	door := &DoorNode{Base: Base{ID: "d1", ParentID: "w1"}, Position: 2, Width: 0.9, Height: 2}
	if err := s.Add(door); err != nil {
		t.Fatalf("add door: %v", err)
	}
	item := &ItemNode{Base: Base{ID: "i1", ParentID: "w1"}, Asset: Asset{AttachTo: AttachWall}}
	if err := s.Add(item); err != nil {
		t.Fatalf("add item: %v", err)
	}

	kids := s.Children("w1")
	if len(kids) != 2 || kids[0] != "d1" || kids[1] != "i1" {
		t.Fatalf("children out of order: %v", kids)
	}

	removed := s.Remove("w1")
	if len(removed) != 3 {
		t.Fatalf("expected cascade to remove 3 nodes, got %v", removed)
	}
	if _, ok := s.Get("d1"); ok {
		t.Fatalf("door survived cascade delete")
	}
	if len(s.Children("level-1")) != 0 {
		t.Fatalf("level still lists deleted wall: %v", s.Children("level-1"))
	}
}

func TestStore_LevelOfWalksParentChain(t *testing.T) {
	s := NewStore()
	addLevel(t, s, "level-1")
	wall := &WallNode{Base: Base{ID: "w1", ParentID: "level-1"}}
	if err := s.Add(wall); err != nil {
		t.Fatalf("add wall: %v", err)
	}
	door := &DoorNode{Base: Base{ID: "d1", ParentID: "w1"}}
	if err := s.Add(door); err != nil {
		t.Fatalf("add door: %v", err)
	}
	if got := s.LevelOf("d1"); got != "level-1" {
		t.Fatalf("expected level-1, got %q", got)
	}
	orphan := &ItemNode{Base: Base{ID: "i1"}}
	if err := s.Add(orphan); err != nil {
		t.Fatalf("add orphan: %v", err)
	}
	if got := s.LevelOf("i1"); got != DefaultLevelID {
		t.Fatalf("expected %q for unparented node, got %q", DefaultLevelID, got)
	}
	if got := s.LevelOf("nope"); got != DefaultLevelID {
		t.Fatalf("expected %q for unknown node, got %q", DefaultLevelID, got)
	}
}

func TestStore_ChangesAreEmittedInOrder(t *testing.T) {
	s := NewStore()
	var ops []ChangeOp
	var levels []string
	s.Subscribe(func(c Change) {
		ops = append(ops, c.Op)
		levels = append(levels, c.LevelID)
	})
	addLevel(t, s, "level-1")
	wall := &WallNode{Base: Base{ID: "w1", ParentID: "level-1"}, End: geometry.Pt(3, 0)}
	if err := s.Add(wall); err != nil {
		t.Fatalf("add: %v", err)
	}
	wall.End = geometry.Pt(4, 0)
	if err := s.Update(wall); err != nil {
		t.Fatalf("update: %v", err)
	}
	s.Remove("w1")

	want := []ChangeOp{OpCreated, OpCreated, OpUpdated, OpDeleted}
	if len(ops) != len(want) {
		t.Fatalf("expected %d changes, got %v", len(want), ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("change %d: expected %s, got %s", i, want[i], ops[i])
		}
	}
	if levels[1] != "level-1" || levels[3] != "level-1" {
		t.Fatalf("wall changes should carry its level: %v", levels)
	}
}

func TestStore_UpdateRejectsKindChange(t *testing.T) {
	s := NewStore()
	if err := s.Add(&WallNode{Base: Base{ID: "n1"}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Update(&SlabNode{Base: Base{ID: "n1"}}); err == nil {
		t.Fatalf("expected kind-change rejection")
	}
}
