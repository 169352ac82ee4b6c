package spatial

import (
	"github.com/planwright/floorplan-engine/internal/scene"
)

// overlapEpsilon keeps exactly-adjacent records from conflicting: items
// whose ranges merely touch are legal neighbors.
const overlapEpsilon = 1e-3

// verticalMargin is the clearance applied when a mounted item's height
// range is snapped back inside the wall.
const verticalMargin = 0.05

// WallPlacement is one mounted item's occupancy on a wall: a parametric
// range along the wall's length and an absolute height range.
type WallPlacement struct {
	ItemID     string
	WallID     string
	TStart     float64
	TEnd       float64
	YStart     float64
	YEnd       float64
	AttachType scene.AttachType
	Side       scene.Side
}

// WallGrid indexes wall-mounted items per wall. Attachment semantics:
// a "wall" attachment occupies both faces, a "wall-side" attachment
// blocks only its own face.
type WallGrid struct {
	placements map[string]map[string]WallPlacement // wallID -> itemID -> record
	itemWall   map[string]string
}

// NewWallGrid returns an empty index.
func NewWallGrid() *WallGrid {
	return &WallGrid{
		placements: make(map[string]map[string]WallPlacement),
		itemWall:   make(map[string]string),
	}
}

// Insert records a placement, replacing any previous record for the
// same item.
func (g *WallGrid) Insert(p WallPlacement) {
	if p.ItemID == "" || p.WallID == "" {
		return
	}
	g.RemoveByItemID(p.ItemID)
	byItem, ok := g.placements[p.WallID]
	if !ok {
		byItem = make(map[string]WallPlacement)
		g.placements[p.WallID] = byItem
	}
	byItem[p.ItemID] = p
	g.itemWall[p.ItemID] = p.WallID
}

// RemoveByItemID drops an item's placement wherever it is recorded.
func (g *WallGrid) RemoveByItemID(itemID string) {
	wallID, ok := g.itemWall[itemID]
	if !ok {
		return
	}
	delete(g.itemWall, itemID)
	byItem := g.placements[wallID]
	delete(byItem, itemID)
	if len(byItem) == 0 {
		delete(g.placements, wallID)
	}
}

// RemoveWall drops every placement on a wall and returns the item ids
// that were mounted there, so callers can cascade-delete the items.
func (g *WallGrid) RemoveWall(wallID string) []string {
	byItem, ok := g.placements[wallID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(byItem))
	for id := range byItem {
		ids = append(ids, id)
		delete(g.itemWall, id)
	}
	delete(g.placements, wallID)
	return ids
}

// Placements returns the records currently on a wall.
func (g *WallGrid) Placements(wallID string) []WallPlacement {
	byItem := g.placements[wallID]
	out := make([]WallPlacement, 0, len(byItem))
	for _, p := range byItem {
		out = append(out, p)
	}
	return out
}

// CanPlace checks a prospective mount against the wall's bounds and the
// existing placements.
//
// The horizontal span is never adjusted: a range outside [0,1] is
// rejected outright. The vertical range is auto-fitted: a top above the
// wall snaps the item down, a bottom below zero snaps it up, both with
// verticalMargin of clearance, reported via WasAdjusted/AdjustedY.
//
// A zero wall length (including unknown walls) always rejects.
func (g *WallGrid) CanPlace(wallID string, wallLength, wallHeight, tCenter, itemWidth, yBottom, itemHeight float64, attach scene.AttachType, side scene.Side, ignore map[string]bool) Placement {
	if wallLength <= 0 {
		return Placement{Valid: false, ConflictIDs: []string{}}
	}

	halfT := itemWidth / 2 / wallLength
	tStart := tCenter - halfT
	tEnd := tCenter + halfT
	if tStart < -overlapEpsilon || tEnd > 1+overlapEpsilon {
		return Placement{Valid: false, ConflictIDs: []string{}}
	}

	adjusted := false
	if yBottom+itemHeight > wallHeight {
		yBottom = wallHeight - itemHeight - verticalMargin
		adjusted = true
	}
	if yBottom < 0 {
		yBottom = verticalMargin
		adjusted = true
	}
	yTop := yBottom + itemHeight

	conflicts := make(map[string]struct{})
	for _, p := range g.placements[wallID] {
		if ignore[p.ItemID] {
			continue
		}
		horizontal := tStart < p.TEnd-overlapEpsilon && tEnd > p.TStart+overlapEpsilon
		vertical := yBottom < p.YEnd-overlapEpsilon && yTop > p.YStart+overlapEpsilon
		if !horizontal || !vertical {
			continue
		}
		if sidesConflict(attach, side, p.AttachType, p.Side) {
			conflicts[p.ItemID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(conflicts))
	for id := range conflicts {
		ids = append(ids, id)
	}
	return Placement{
		Valid:       len(ids) == 0,
		ConflictIDs: ids,
		AdjustedY:   yBottom,
		WasAdjusted: adjusted,
	}
}

// sidesConflict applies the face-occupancy rule. Full-wall attachments
// conflict with everything; side attachments conflict with full-wall
// attachments, and with other side attachments on the same face. An
// unspecified side is treated as occupying both faces.
func sidesConflict(aAttach scene.AttachType, aSide scene.Side, bAttach scene.AttachType, bSide scene.Side) bool {
	if aAttach == scene.AttachWall || bAttach == scene.AttachWall {
		return true
	}
	if aSide == scene.SideNone || bSide == scene.SideNone {
		return true
	}
	return aSide == bSide
}
