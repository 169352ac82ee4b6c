package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/planwright/floorplan-engine/internal/config"
	"github.com/planwright/floorplan-engine/internal/geometry"
	"github.com/planwright/floorplan-engine/internal/miter"
	"github.com/planwright/floorplan-engine/internal/rooms"
	"github.com/planwright/floorplan-engine/internal/scene"
	"github.com/planwright/floorplan-engine/internal/spatial"
	"github.com/planwright/floorplan-engine/internal/store"
)

// publisher is the outbound patch sink. ws.Broadcaster satisfies it;
// tests substitute a recorder.
type publisher interface {
	Send(patchType string, payload any)
}

// Session owns one editing session: the scene store, the derived
// spatial indexes, and the per-level miter and room caches. All intent
// handling is serialized through its mutex; the scene store and the
// spatial manager rely on that.
type Session struct {
	Lock sync.Mutex

	cfg      *config.Config
	scene    *scene.Store
	spatial  *spatial.Manager
	detector *rooms.Detector
	planDB   *store.DB
	pub      publisher

	miters map[string]map[string]*miter.WallMiter
	rooms  map[string][]rooms.Room
	sides  map[string]map[string]rooms.WallSides
}

// NewSession wires an empty session. The spatial manager subscribes to
// scene changes so every mutation path, including plan loading and
// cascade deletes, keeps the indexes current.
func NewSession(cfg *config.Config, planDB *store.DB, pub publisher) *Session {
	s := &Session{
		cfg:      cfg,
		scene:    scene.NewStore(),
		spatial:  spatial.NewManager(cfg.GridCellSize),
		detector: rooms.NewDetector(cfg.RoomResolution),
		planDB:   planDB,
		pub:      pub,
		miters:   make(map[string]map[string]*miter.WallMiter),
		rooms:    make(map[string][]rooms.Room),
		sides:    make(map[string]map[string]rooms.WallSides),
	}
	s.scene.Subscribe(func(c scene.Change) {
		switch c.Op {
		case scene.OpCreated:
			s.spatial.HandleNodeCreated(c.Node, c.LevelID)
		case scene.OpUpdated:
			s.spatial.HandleNodeUpdated(c.Node, c.LevelID)
		case scene.OpDeleted:
			s.spatial.HandleNodeDeleted(c.Node, c.LevelID)
		}
	})
	return s
}

// LoadPlan replays a stored plan into the session and recomputes the
// derived geometry for every level it mentions.
func (s *Session) LoadPlan(ctx context.Context, name string) error {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	n, err := s.planDB.LoadPlan(ctx, name, s.scene)
	if err != nil {
		return fmt.Errorf("load plan %q: %w", name, err)
	}
	log.Printf("loaded plan %q: %d nodes", name, n)

	levels := map[string]bool{}
	for _, node := range s.scene.NodesByKind(scene.KindWall) {
		levels[s.scene.LevelOf(node.NodeID())] = true
	}
	for levelID := range levels {
		s.recomputeWalls(levelID)
	}
	return nil
}

// recomputeWalls refreshes the miter cache for a level and, when the
// wall change can affect room topology, reruns room detection. Callers
// hold the lock.
func (s *Session) recomputeWalls(levelID string) {
	walls := s.scene.WallsOnLevel(levelID)

	miters := miter.CalculateLevelMiters(walls)
	s.miters[levelID] = miters
	s.pub.Send("WallMitersChanged", protocolMiters(levelID, miters))

	if !s.detector.ShouldRedetect(levelID, walls) {
		return
	}
	result := s.detector.Detect(levelID, walls)
	s.rooms[levelID] = result.Rooms
	s.sides[levelID] = result.WallSides
	s.pub.Send("RoomsChanged", protocolRooms(levelID, result.Rooms))
	s.pub.Send("WallSidesChanged", protocolSides(levelID, result.WallSides))
}

// Miters returns the cached miter solution for one wall, if the level
// has been solved.
func (s *Session) Miters(levelID, wallID string) (*miter.WallMiter, bool) {
	s.Lock.Lock()
	defer s.Lock.Unlock()
	m, ok := s.miters[levelID][wallID]
	return m, ok
}

// Rooms returns the cached rooms of a level.
func (s *Session) Rooms(levelID string) []rooms.Room {
	s.Lock.Lock()
	defer s.Lock.Unlock()
	return s.rooms[levelID]
}

// WallSides returns the cached face classification of a level.
func (s *Session) WallSides(levelID string) map[string]rooms.WallSides {
	s.Lock.Lock()
	defer s.Lock.Unlock()
	return s.sides[levelID]
}

// Stats summarizes the session for the status page.
type Stats struct {
	Nodes  int
	Walls  int
	Rooms  int
	Levels []string
}

func (s *Session) Stats() Stats {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	st := Stats{
		Nodes: s.scene.Len(),
		Walls: len(s.scene.NodesByKind(scene.KindWall)),
	}
	for _, lvl := range s.scene.NodesByKind(scene.KindLevel) {
		st.Levels = append(st.Levels, lvl.NodeID())
	}
	for _, rs := range s.rooms {
		st.Rooms += len(rs)
	}
	return st
}

// elevationBaseline picks the resting Y for a floor item: the highest
// slab under its footprint, zero if none.
func (s *Session) elevationBaseline(levelID string, center geometry.Point, width, depth, rotationY float64) float64 {
	return s.spatial.SlabElevationForItem(levelID, center, width, depth, rotationY)
}
