package spatial

import (
	"github.com/planwright/floorplan-engine/internal/geometry"
	"github.com/planwright/floorplan-engine/internal/scene"
)

// Manager aggregates the per-level grids and the polygon registries
// used for elevation lookups. It is a derived cache over the scene
// store: every structure here can be rebuilt from scratch by replaying
// the node set, and none of it is a source of truth.
//
// Construct one per editor session and inject it; there is no package
// level instance.
type Manager struct {
	cellSize float64

	floorGrids map[string]*FloorGrid // by level id
	wallGrids  map[string]*WallGrid  // by level id

	walls     map[string]*scene.WallNode
	wallLevel map[string]string
	// Length at registration time. The scene layer edits wall nodes in
	// place, so by update time the node itself only knows its new
	// geometry; this is what lets updates rescale mounted spans.
	wallLength map[string]float64

	slabs     map[string]map[string]*scene.SlabNode // level id -> slab id
	slabLevel map[string]string

	ceilings     map[string]*scene.CeilingNode
	ceilingLevel map[string]string
	ceilingItems map[string]map[string]geometry.Polygon // ceiling id -> item id -> footprint
	itemCeiling  map[string]string
	itemLevel    map[string]string
	itemAttach   map[string]scene.AttachType
}

// NewManager returns an empty manager. Non-positive cell sizes use
// DefaultCellSize for every floor grid.
func NewManager(cellSize float64) *Manager {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Manager{
		cellSize:     cellSize,
		floorGrids:   make(map[string]*FloorGrid),
		wallGrids:    make(map[string]*WallGrid),
		walls:        make(map[string]*scene.WallNode),
		wallLevel:    make(map[string]string),
		wallLength:   make(map[string]float64),
		slabs:        make(map[string]map[string]*scene.SlabNode),
		slabLevel:    make(map[string]string),
		ceilings:     make(map[string]*scene.CeilingNode),
		ceilingLevel: make(map[string]string),
		ceilingItems: make(map[string]map[string]geometry.Polygon),
		itemCeiling:  make(map[string]string),
		itemLevel:    make(map[string]string),
		itemAttach:   make(map[string]scene.AttachType),
	}
}

func (m *Manager) floorGrid(levelID string) *FloorGrid {
	g, ok := m.floorGrids[levelID]
	if !ok {
		g = NewFloorGrid(m.cellSize)
		m.floorGrids[levelID] = g
	}
	return g
}

func (m *Manager) wallGrid(levelID string) *WallGrid {
	g, ok := m.wallGrids[levelID]
	if !ok {
		g = NewWallGrid()
		m.wallGrids[levelID] = g
	}
	return g
}

// HandleNodeCreated routes a new node into the right registries. Nodes
// whose attachment cannot be resolved (missing parent wall or ceiling)
// are skipped silently; the store is the authority on validity.
func (m *Manager) HandleNodeCreated(n scene.Node, levelID string) {
	switch node := n.(type) {
	case *scene.WallNode:
		m.walls[node.ID] = node
		m.wallLevel[node.ID] = levelID
		m.wallLength[node.ID] = node.Length()
	case *scene.SlabNode:
		byID, ok := m.slabs[levelID]
		if !ok {
			byID = make(map[string]*scene.SlabNode)
			m.slabs[levelID] = byID
		}
		byID[node.ID] = node
		m.slabLevel[node.ID] = levelID
	case *scene.CeilingNode:
		m.ceilings[node.ID] = node
		m.ceilingLevel[node.ID] = levelID
	case *scene.ItemNode:
		m.insertItem(node, levelID)
	}
}

// HandleNodeUpdated re-indexes a node after its fields changed. Walls
// and ceilings keep the placement records of their mounted items across
// the update; only a true delete cascades mount removal.
func (m *Manager) HandleNodeUpdated(n scene.Node, levelID string) {
	switch node := n.(type) {
	case *scene.WallNode:
		m.updateWall(node, levelID)
	case *scene.CeilingNode:
		m.updateCeiling(node, levelID)
	default:
		m.HandleNodeDeleted(n, levelID)
		m.HandleNodeCreated(n, levelID)
	}
}

// updateWall re-registers a wall and carries its mounted placements
// over. Items keep their wall-local distance in meters, so the
// parametric spans are rescaled by the old/new length ratio. A wall
// collapsing to zero length sheds its mounts like a delete would.
func (m *Manager) updateWall(wall *scene.WallNode, levelID string) {
	oldLen := m.wallLength[wall.ID]
	var kept []WallPlacement
	if oldLevel, ok := m.wallLevel[wall.ID]; ok {
		if g, ok := m.wallGrids[oldLevel]; ok {
			kept = g.Placements(wall.ID)
			g.RemoveWall(wall.ID)
		}
	}

	m.walls[wall.ID] = wall
	m.wallLevel[wall.ID] = levelID
	newLen := wall.Length()
	m.wallLength[wall.ID] = newLen

	if newLen <= 0 {
		for _, p := range kept {
			delete(m.itemLevel, p.ItemID)
			delete(m.itemAttach, p.ItemID)
		}
		return
	}
	g := m.wallGrid(levelID)
	for _, p := range kept {
		if oldLen > 0 && oldLen != newLen {
			scale := oldLen / newLen
			p.TStart *= scale
			p.TEnd *= scale
		}
		g.Insert(p)
		m.itemLevel[p.ItemID] = levelID
	}
}

// updateCeiling re-registers a ceiling in place. Mounted footprints are
// world-space polygons, so a polygon or height edit leaves them valid.
func (m *Manager) updateCeiling(ceiling *scene.CeilingNode, levelID string) {
	m.ceilings[ceiling.ID] = ceiling
	m.ceilingLevel[ceiling.ID] = levelID
	for itemID := range m.ceilingItems[ceiling.ID] {
		m.itemLevel[itemID] = levelID
	}
}

// HandleNodeDeleted removes a node from every registry it appears in.
func (m *Manager) HandleNodeDeleted(n scene.Node, levelID string) {
	switch node := n.(type) {
	case *scene.WallNode:
		delete(m.walls, node.ID)
		delete(m.wallLength, node.ID)
		if lvl, ok := m.wallLevel[node.ID]; ok {
			delete(m.wallLevel, node.ID)
			if g, ok := m.wallGrids[lvl]; ok {
				for _, orphan := range g.RemoveWall(node.ID) {
					delete(m.itemLevel, orphan)
					delete(m.itemAttach, orphan)
				}
			}
		}
	case *scene.SlabNode:
		if lvl, ok := m.slabLevel[node.ID]; ok {
			delete(m.slabLevel, node.ID)
			if byID, ok := m.slabs[lvl]; ok {
				delete(byID, node.ID)
				if len(byID) == 0 {
					delete(m.slabs, lvl)
				}
			}
		}
	case *scene.CeilingNode:
		delete(m.ceilings, node.ID)
		delete(m.ceilingLevel, node.ID)
		for itemID := range m.ceilingItems[node.ID] {
			delete(m.itemCeiling, itemID)
			delete(m.itemLevel, itemID)
			delete(m.itemAttach, itemID)
		}
		delete(m.ceilingItems, node.ID)
	case *scene.ItemNode:
		m.removeItem(node.ID)
	}
}

func (m *Manager) insertItem(item *scene.ItemNode, levelID string) {
	dims := item.Asset.Dimensions
	switch item.Asset.AttachTo {
	case scene.AttachWall, scene.AttachWallSide:
		wall, ok := m.walls[item.ParentID]
		if !ok {
			return
		}
		length := wall.Length()
		if length <= 0 {
			return
		}
		lvl := m.wallLevel[wall.ID]
		t := item.Position[0] / length
		halfT := dims.Width / 2 / length
		m.wallGrid(lvl).Insert(WallPlacement{
			ItemID:     item.ID,
			WallID:     wall.ID,
			TStart:     t - halfT,
			TEnd:       t + halfT,
			YStart:     item.Position[1],
			YEnd:       item.Position[1] + dims.Height,
			AttachType: item.Asset.AttachTo,
			Side:       item.Side,
		})
		m.itemLevel[item.ID] = lvl
		m.itemAttach[item.ID] = item.Asset.AttachTo
	case scene.AttachCeiling:
		ceiling, ok := m.ceilings[item.ParentID]
		if !ok {
			return
		}
		byItem, ok := m.ceilingItems[ceiling.ID]
		if !ok {
			byItem = make(map[string]geometry.Polygon)
			m.ceilingItems[ceiling.ID] = byItem
		}
		center := geometry.Pt(item.Position[0], item.Position[2])
		byItem[item.ID] = geometry.ItemFootprint(center, dims.Width, dims.Depth, item.Rotation[1], 0)
		m.itemCeiling[item.ID] = ceiling.ID
		m.itemLevel[item.ID] = m.ceilingLevel[ceiling.ID]
		m.itemAttach[item.ID] = scene.AttachCeiling
	default:
		center := geometry.Pt(item.Position[0], item.Position[2])
		m.floorGrid(levelID).Insert(item.ID, center, dims.Width, dims.Depth, item.Rotation[1])
		m.itemLevel[item.ID] = levelID
		m.itemAttach[item.ID] = scene.AttachNone
	}
}

func (m *Manager) removeItem(itemID string) {
	lvl, ok := m.itemLevel[itemID]
	if !ok {
		return
	}
	switch m.itemAttach[itemID] {
	case scene.AttachWall, scene.AttachWallSide:
		if g, ok := m.wallGrids[lvl]; ok {
			g.RemoveByItemID(itemID)
		}
	case scene.AttachCeiling:
		if ceilingID, ok := m.itemCeiling[itemID]; ok {
			delete(m.itemCeiling, itemID)
			if byItem, ok := m.ceilingItems[ceilingID]; ok {
				delete(byItem, itemID)
				if len(byItem) == 0 {
					delete(m.ceilingItems, ceilingID)
				}
			}
		}
	default:
		if g, ok := m.floorGrids[lvl]; ok {
			g.Remove(itemID)
		}
	}
	delete(m.itemLevel, itemID)
	delete(m.itemAttach, itemID)
}

// CanPlaceOnFloor forwards to the level's floor grid.
func (m *Manager) CanPlaceOnFloor(levelID string, center geometry.Point, width, depth, rotationY float64, ignore map[string]bool) Placement {
	return m.floorGrid(levelID).CanPlace(center, width, depth, rotationY, ignore)
}

// CanPlaceOnWall resolves the wall's length and height and forwards to
// the level's wall grid. distanceAlong is wall-local, in meters from
// the wall's start. Unknown walls reject: a zero-length wall and a
// missing wall are indistinguishable to callers, and both are invalid.
func (m *Manager) CanPlaceOnWall(wallID string, distanceAlong, itemWidth, yBottom, itemHeight float64, attach scene.AttachType, side scene.Side, ignore map[string]bool) Placement {
	wall, ok := m.walls[wallID]
	if !ok {
		return Placement{Valid: false, ConflictIDs: []string{}}
	}
	length := wall.Length()
	if length <= 0 {
		return Placement{Valid: false, ConflictIDs: []string{}}
	}
	grid := m.wallGrid(m.wallLevel[wallID])
	return grid.CanPlace(wallID, length, wall.Height, distanceAlong/length, itemWidth, yBottom, itemHeight, attach, side, ignore)
}

// CanPlaceOnCeiling requires the item's whole rotated footprint to lie
// inside the ceiling polygon, then checks overlap against the other
// items already mounted on that ceiling.
func (m *Manager) CanPlaceOnCeiling(ceilingID string, center geometry.Point, width, depth, rotationY float64, ignore map[string]bool) Placement {
	ceiling, ok := m.ceilings[ceilingID]
	if !ok || ceiling.Polygon.IsEmpty() {
		return Placement{Valid: false, ConflictIDs: []string{}}
	}
	footprint := geometry.ItemFootprint(center, width, depth, rotationY, 0)
	for _, corner := range footprint {
		if !geometry.PointInPolygon(corner.X, corner.Z, ceiling.Polygon) {
			return Placement{Valid: false, ConflictIDs: []string{}}
		}
	}
	conflicts := make([]string, 0)
	for itemID, other := range m.ceilingItems[ceilingID] {
		if ignore[itemID] {
			continue
		}
		if geometry.PolygonsOverlap(footprint, other) {
			conflicts = append(conflicts, itemID)
		}
	}
	return Placement{Valid: len(conflicts) == 0, ConflictIDs: conflicts}
}

// SlabElevationAt returns the highest elevation among the level's slabs
// containing the point, or 0 when none does. Highest wins so objects
// rest on the tallest surface beneath them.
func (m *Manager) SlabElevationAt(levelID string, x, z float64) float64 {
	best := 0.0
	for _, slab := range m.slabs[levelID] {
		if slab.Polygon.IsEmpty() {
			continue
		}
		if geometry.PointInPolygon(x, z, slab.Polygon) && slab.Elevation > best {
			best = slab.Elevation
		}
	}
	return best
}

// SlabElevationForItem is SlabElevationAt with full-footprint overlap,
// so an item hanging over a slab edge still picks the slab up.
func (m *Manager) SlabElevationForItem(levelID string, center geometry.Point, width, depth, rotationY float64) float64 {
	best := 0.0
	for _, slab := range m.slabs[levelID] {
		if slab.Polygon.IsEmpty() {
			continue
		}
		if geometry.ItemOverlapsPolygon(center, width, depth, rotationY, slab.Polygon) && slab.Elevation > best {
			best = slab.Elevation
		}
	}
	return best
}

// SlabElevationForWall resolves the elevation under a wall's thickness
// rectangle the same way.
func (m *Manager) SlabElevationForWall(levelID string, start, end geometry.Point, thickness float64) float64 {
	best := 0.0
	for _, slab := range m.slabs[levelID] {
		if slab.Polygon.IsEmpty() {
			continue
		}
		if geometry.WallOverlapsPolygon(start, end, thickness, slab.Polygon) && slab.Elevation > best {
			best = slab.Elevation
		}
	}
	return best
}

func (m *Manager) Wall(wallID string) (*scene.WallNode, bool) {
	w, ok := m.walls[wallID]
	return w, ok
}

// QueryRadius forwards to the level's floor grid.
func (m *Manager) QueryRadius(levelID string, x, z, radius float64) []string {
	return m.floorGrid(levelID).QueryRadius(x, z, radius)
}

// ClearLevel tears down every structure belonging to one level.
func (m *Manager) ClearLevel(levelID string) {
	delete(m.floorGrids, levelID)
	delete(m.wallGrids, levelID)
	for id, lvl := range m.wallLevel {
		if lvl == levelID {
			delete(m.wallLevel, id)
			delete(m.walls, id)
		}
	}
	for id, lvl := range m.slabLevel {
		if lvl == levelID {
			delete(m.slabLevel, id)
		}
	}
	delete(m.slabs, levelID)
	for id, lvl := range m.ceilingLevel {
		if lvl == levelID {
			delete(m.ceilingLevel, id)
			for itemID := range m.ceilingItems[id] {
				delete(m.itemCeiling, itemID)
			}
			delete(m.ceilingItems, id)
			delete(m.ceilings, id)
		}
	}
	for id, lvl := range m.itemLevel {
		if lvl == levelID {
			delete(m.itemLevel, id)
			delete(m.itemAttach, id)
		}
	}
}

// Clear resets the manager to its empty state.
func (m *Manager) Clear() {
	*m = *NewManager(m.cellSize)
}
