package spatial

import (
	"math"

	"github.com/planwright/floorplan-engine/internal/geometry"
)

// DefaultCellSize is the floor grid resolution in world units.
const DefaultCellSize = 0.5

type cellKey struct {
	X int
	Z int
}

// Placement is the result of a can-place query.
type Placement struct {
	Valid       bool     `json:"valid"`
	ConflictIDs []string `json:"conflictIds"`
	AdjustedY   float64  `json:"adjustedY,omitempty"`
	WasAdjusted bool     `json:"wasAdjusted,omitempty"`
}

// FloorGrid is a cell-bucketed index over floor-placed items. Cell
// coverage uses a rotation-magnitude AABB approximation rather than the
// exact rotated footprint; conflicts are reported at cell granularity,
// which is intentionally conservative for grid-snapped placement.
type FloorGrid struct {
	cellSize  float64
	cells     map[cellKey]map[string]struct{}
	itemCells map[string][]cellKey
}

// NewFloorGrid returns an empty grid. Non-positive cell sizes fall back
// to DefaultCellSize.
func NewFloorGrid(cellSize float64) *FloorGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &FloorGrid{
		cellSize:  cellSize,
		cells:     make(map[cellKey]map[string]struct{}),
		itemCells: make(map[string][]cellKey),
	}
}

// coveredCells returns the cell keys the rotated AABB of an item spans.
func (g *FloorGrid) coveredCells(center geometry.Point, width, depth, rotationY float64) []cellKey {
	c := math.Abs(math.Cos(rotationY))
	s := math.Abs(math.Sin(rotationY))
	halfW := (width*c + depth*s) / 2
	halfD := (width*s + depth*c) / 2

	minX := int(math.Floor((center.X - halfW) / g.cellSize))
	maxX := int(math.Floor((center.X + halfW) / g.cellSize))
	minZ := int(math.Floor((center.Z - halfD) / g.cellSize))
	maxZ := int(math.Floor((center.Z + halfD) / g.cellSize))

	keys := make([]cellKey, 0, (maxX-minX+1)*(maxZ-minZ+1))
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			keys = append(keys, cellKey{x, z})
		}
	}
	return keys
}

// Insert records the item in every cell its footprint covers. Inserting
// an id that is already present re-indexes it.
func (g *FloorGrid) Insert(itemID string, center geometry.Point, width, depth, rotationY float64) {
	if _, ok := g.itemCells[itemID]; ok {
		g.Remove(itemID)
	}
	keys := g.coveredCells(center, width, depth, rotationY)
	for _, k := range keys {
		set, ok := g.cells[k]
		if !ok {
			set = make(map[string]struct{})
			g.cells[k] = set
		}
		set[itemID] = struct{}{}
	}
	g.itemCells[itemID] = keys
}

// Remove drops the item from every cell it occupies, deleting cells
// that become empty. Unknown ids are a no-op.
func (g *FloorGrid) Remove(itemID string) {
	keys, ok := g.itemCells[itemID]
	if !ok {
		return
	}
	for _, k := range keys {
		if set, ok := g.cells[k]; ok {
			delete(set, itemID)
			if len(set) == 0 {
				delete(g.cells, k)
			}
		}
	}
	delete(g.itemCells, itemID)
}

// Update re-indexes an item at a new position. Remove-then-insert, not
// a diff; per-item cell counts are small enough that correctness wins.
func (g *FloorGrid) Update(itemID string, center geometry.Point, width, depth, rotationY float64) {
	g.Remove(itemID)
	g.Insert(itemID, center, width, depth, rotationY)
}

// CanPlace reports whether the footprint's cells are free of occupants
// other than those in ignore.
func (g *FloorGrid) CanPlace(center geometry.Point, width, depth, rotationY float64, ignore map[string]bool) Placement {
	conflicts := make(map[string]struct{})
	for _, k := range g.coveredCells(center, width, depth, rotationY) {
		for id := range g.cells[k] {
			if !ignore[id] {
				conflicts[id] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(conflicts))
	for id := range conflicts {
		ids = append(ids, id)
	}
	return Placement{Valid: len(ids) == 0, ConflictIDs: ids}
}

// QueryRadius returns the ids of all items occupying cells within the
// given radius of (x, z). The disk is approximated by whole cells.
func (g *FloorGrid) QueryRadius(x, z, radius float64) []string {
	cx := int(math.Floor(x / g.cellSize))
	cz := int(math.Floor(z / g.cellSize))
	r := int(math.Ceil(radius / g.cellSize))

	seen := make(map[string]struct{})
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			for id := range g.cells[cellKey{cx + dx, cz + dz}] {
				seen[id] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids
}

func (g *FloorGrid) Len() int {
	return len(g.itemCells)
}
