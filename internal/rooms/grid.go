package rooms

import (
	"math"

	"github.com/planwright/floorplan-engine/internal/geometry"
	"github.com/planwright/floorplan-engine/internal/scene"
)

// occupancyGrid is the ephemeral raster one detection pass runs on.
// It is rebuilt from the wall set every pass and never outlives it.
type occupancyGrid struct {
	minX, minZ float64
	res        float64
	nx, nz     int
	cells      []int
}

func newOccupancyGrid(walls []*scene.WallNode, res float64) *occupancyGrid {
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, w := range walls {
		for _, p := range []geometry.Point{w.Start, w.End} {
			minX = math.Min(minX, p.X)
			minZ = math.Min(minZ, p.Z)
			maxX = math.Max(maxX, p.X)
			maxZ = math.Max(maxZ, p.Z)
		}
	}
	minX -= gridPadding
	minZ -= gridPadding
	maxX += gridPadding
	maxZ += gridPadding

	g := &occupancyGrid{
		minX: minX,
		minZ: minZ,
		res:  res,
		nx:   int(math.Ceil((maxX-minX)/res)) + 1,
		nz:   int(math.Ceil((maxZ-minZ)/res)) + 1,
	}
	g.cells = make([]int, g.nx*g.nz)
	for i := range g.cells {
		g.cells[i] = cellEmpty
	}
	return g
}

func (g *occupancyGrid) cellAt(p geometry.Point) (int, int, bool) {
	cx := int(math.Floor((p.X - g.minX) / g.res))
	cz := int(math.Floor((p.Z - g.minZ) / g.res))
	if cx < 0 || cx >= g.nx || cz < 0 || cz >= g.nz {
		return 0, 0, false
	}
	return cx, cz, true
}

func (g *occupancyGrid) idx(cx, cz int) int {
	return cz*g.nx + cx
}

// rasterize stamps each wall as a thickness-aware rectangle. Sampling
// at half the grid resolution both along the length and across the
// thickness guarantees no gaps at this cell size.
func (g *occupancyGrid) rasterize(walls []*scene.WallNode) {
	step := g.res / 2
	for _, w := range walls {
		length := w.Length()
		dir := w.Direction()
		normal := dir.Perp()
		halfT := w.Thickness / 2

		alongSteps := int(math.Ceil(length/step)) + 1
		acrossSteps := int(math.Ceil(w.Thickness/step)) + 1
		for i := 0; i <= alongSteps; i++ {
			along := math.Min(float64(i)*step, length)
			base := w.Start.Add(dir.Scale(along))
			for j := 0; j <= acrossSteps; j++ {
				across := -halfT + math.Min(float64(j)*step, w.Thickness)
				p := base.Add(normal.Scale(across))
				if cx, cz, ok := g.cellAt(p); ok {
					g.cells[g.idx(cx, cz)] = cellWall
				}
			}
		}
	}
}

// fillExterior flood-fills from every open boundary cell, marking all
// reachable space as exterior.
func (g *occupancyGrid) fillExterior() {
	var qx, qz []int
	seed := func(cx, cz int) {
		i := g.idx(cx, cz)
		if g.cells[i] == cellEmpty {
			g.cells[i] = cellExterior
			qx = append(qx, cx)
			qz = append(qz, cz)
		}
	}
	for cx := 0; cx < g.nx; cx++ {
		seed(cx, 0)
		seed(cx, g.nz-1)
	}
	for cz := 0; cz < g.nz; cz++ {
		seed(0, cz)
		seed(g.nx-1, cz)
	}
	g.flood(&qx, &qz, cellExterior)
}

// fillRooms assigns a room id to every remaining connected component
// and returns the number of rooms.
func (g *occupancyGrid) fillRooms() int {
	roomID := 0
	for cz := 0; cz < g.nz; cz++ {
		for cx := 0; cx < g.nx; cx++ {
			i := g.idx(cx, cz)
			if g.cells[i] != cellEmpty {
				continue
			}
			g.cells[i] = roomID
			qx := []int{cx}
			qz := []int{cz}
			g.flood(&qx, &qz, roomID)
			roomID++
		}
	}
	return roomID
}

// flood runs a 4-connected BFS spreading mark into empty cells.
func (g *occupancyGrid) flood(qx, qz *[]int, mark int) {
	for len(*qx) > 0 {
		cx := (*qx)[0]
		cz := (*qz)[0]
		*qx = (*qx)[1:]
		*qz = (*qz)[1:]

		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx := cx + d[0]
			nz := cz + d[1]
			if nx < 0 || nx >= g.nx || nz < 0 || nz >= g.nz {
				continue
			}
			i := g.idx(nx, nz)
			if g.cells[i] == cellEmpty {
				g.cells[i] = mark
				*qx = append(*qx, nx)
				*qz = append(*qz, nz)
			}
		}
	}
}

// roomBounds returns the world-space bounding box of a room's cells.
func (g *occupancyGrid) roomBounds(roomID int) (geometry.Point, geometry.Point) {
	minCX, minCZ := g.nx, g.nz
	maxCX, maxCZ := -1, -1
	for cz := 0; cz < g.nz; cz++ {
		for cx := 0; cx < g.nx; cx++ {
			if g.cells[g.idx(cx, cz)] != roomID {
				continue
			}
			minCX = min(minCX, cx)
			minCZ = min(minCZ, cz)
			maxCX = max(maxCX, cx)
			maxCZ = max(maxCZ, cz)
		}
	}
	lo := geometry.Pt(g.minX+float64(minCX)*g.res, g.minZ+float64(minCZ)*g.res)
	hi := geometry.Pt(g.minX+float64(maxCX+1)*g.res, g.minZ+float64(maxCZ+1)*g.res)
	return lo, hi
}

// classifyWall samples three points along the wall (20/50/80%), offset
// past each face by half the thickness plus one cell, and labels the
// face by the first room or exterior cell hit. Faces that only ever
// hit walls or leave the grid stay unknown. The second return lists the
// room ids the wall faces, for room-to-wall bookkeeping.
func (g *occupancyGrid) classifyWall(w *scene.WallNode) (WallSides, []int) {
	dir := w.Direction()
	normal := dir.Perp()
	offset := w.Thickness/2 + g.res

	var faced []int
	classify := func(side float64) SideClass {
		for _, t := range [3]float64{0.2, 0.5, 0.8} {
			p := w.Start.Add(dir.Scale(t * w.Length())).Add(normal.Scale(side * offset))
			cx, cz, ok := g.cellAt(p)
			if !ok {
				continue
			}
			switch v := g.cells[g.idx(cx, cz)]; {
			case v >= 0:
				faced = appendRoomID(faced, v)
				return SideInterior
			case v == cellExterior:
				return SideExterior
			}
		}
		return SideUnknown
	}

	sides := WallSides{
		FrontSide: classify(1),
		BackSide:  classify(-1),
	}
	return sides, faced
}

func appendRoomID(ids []int, id int) []int {
	for _, have := range ids {
		if have == id {
			return ids
		}
	}
	return append(ids, id)
}
