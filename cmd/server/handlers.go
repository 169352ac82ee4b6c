package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/planwright/floorplan-engine/internal/geometry"
	"github.com/planwright/floorplan-engine/internal/miter"
	"github.com/planwright/floorplan-engine/internal/protocol"
	"github.com/planwright/floorplan-engine/internal/roof"
	"github.com/planwright/floorplan-engine/internal/rooms"
	"github.com/planwright/floorplan-engine/internal/scene"
)

func protocolMiters(levelID string, m map[string]*miter.WallMiter) protocol.WallMitersChanged {
	return protocol.WallMitersChanged{LevelID: levelID, Miters: m}
}

func protocolRooms(levelID string, rs []rooms.Room) protocol.RoomsChanged {
	return protocol.RoomsChanged{LevelID: levelID, Rooms: rs}
}

func protocolSides(levelID string, sides map[string]rooms.WallSides) protocol.WallSidesChanged {
	return protocol.WallSidesChanged{LevelID: levelID, Sides: sides}
}

// routeIntent decodes and dispatches one client request. Unknown types
// and malformed payloads are logged and dropped; the stream stays up.
func routeIntent(s *Session, env protocol.IntentEnvelope) {
	switch env.Type {
	case "RequestAddWall":
		var req protocol.RequestAddWall
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestAddWall payload: %v", err)
			return
		}
		handleRequestAddWall(s, req)
	case "RequestMoveWall":
		var req protocol.RequestMoveWall
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestMoveWall payload: %v", err)
			return
		}
		handleRequestMoveWall(s, req)
	case "RequestRemoveNode":
		var req protocol.RequestRemoveNode
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestRemoveNode payload: %v", err)
			return
		}
		handleRequestRemoveNode(s, req)
	case "RequestPlaceItem":
		var req protocol.RequestPlaceItem
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestPlaceItem payload: %v", err)
			return
		}
		handleRequestPlaceItem(s, req)
	case "RequestMoveItem":
		var req protocol.RequestMoveItem
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestMoveItem payload: %v", err)
			return
		}
		handleRequestMoveItem(s, req)
	case "RequestAddSlab":
		var req protocol.RequestAddSlab
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestAddSlab payload: %v", err)
			return
		}
		handleRequestAddSlab(s, req)
	case "RequestAddCeiling":
		var req protocol.RequestAddCeiling
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestAddCeiling payload: %v", err)
			return
		}
		handleRequestAddCeiling(s, req)
	case "RequestAddRoof":
		var req protocol.RequestAddRoof
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestAddRoof payload: %v", err)
			return
		}
		handleRequestAddRoof(s, req)
	case "RequestElevationAt":
		var req protocol.RequestElevationAt
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestElevationAt payload: %v", err)
			return
		}
		handleRequestElevationAt(s, req)
	case "RequestSavePlan":
		var req protocol.RequestSavePlan
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			log.Printf("bad RequestSavePlan payload: %v", err)
			return
		}
		handleRequestSavePlan(s, req)
	default:
		log.Printf("unknown intent type %q", env.Type)
	}
}

// ensureLevel resolves the requested level id, creating the level node
// on first use so a fresh session accepts geometry immediately.
func ensureLevel(s *Session, levelID string) string {
	if levelID == "" {
		levelID = scene.DefaultLevelID
	}
	if _, ok := s.scene.Get(levelID); !ok {
		if err := s.scene.Add(&scene.LevelNode{Base: scene.Base{ID: levelID}}); err != nil {
			log.Printf("create level %s: %v", levelID, err)
		}
	}
	return levelID
}

func handleRequestAddWall(s *Session, req protocol.RequestAddWall) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	levelID := ensureLevel(s, req.LevelID)
	if req.Start.Distance(req.End) < geometry.Epsilon {
		s.pub.Send("PlacementRejected", protocol.PlacementRejected{
			LevelID: levelID,
			Reason:  "wall endpoints coincide",
		})
		return
	}
	thickness := req.Thickness
	if thickness <= 0 {
		thickness = 0.2
	}
	height := req.Height
	if height <= 0 {
		height = 2.7
	}

	wall := &scene.WallNode{
		Base:      scene.Base{ParentID: levelID},
		Start:     req.Start,
		End:       req.End,
		Thickness: thickness,
		Height:    height,
	}
	if err := s.scene.Add(wall); err != nil {
		log.Printf("add wall: %v", err)
		return
	}
	s.pub.Send("NodeUpserted", protocol.NodeUpserted{
		Kind:    string(scene.KindWall),
		LevelID: levelID,
		Node:    wall,
	})
	s.recomputeWalls(levelID)
}

func handleRequestMoveWall(s *Session, req protocol.RequestMoveWall) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	node, ok := s.scene.Get(req.WallID)
	if !ok {
		log.Printf("move wall: %s not found", req.WallID)
		return
	}
	wall, ok := node.(*scene.WallNode)
	if !ok {
		log.Printf("move wall: %s is a %s", req.WallID, node.Kind())
		return
	}
	levelID := s.scene.LevelOf(req.WallID)
	if req.Start.Distance(req.End) < geometry.Epsilon {
		s.pub.Send("PlacementRejected", protocol.PlacementRejected{
			LevelID: levelID,
			Reason:  "wall endpoints coincide",
		})
		return
	}

	wall.Start = req.Start
	wall.End = req.End
	if err := s.scene.Update(wall); err != nil {
		log.Printf("move wall: %v", err)
		return
	}
	s.pub.Send("NodeUpserted", protocol.NodeUpserted{
		Kind:    string(scene.KindWall),
		LevelID: levelID,
		Node:    wall,
	})
	s.recomputeWalls(levelID)
}

func handleRequestRemoveNode(s *Session, req protocol.RequestRemoveNode) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	node, ok := s.scene.Get(req.NodeID)
	if !ok {
		log.Printf("remove node: %s not found", req.NodeID)
		return
	}
	// Containers can cascade wall deletions, so they trigger a
	// recompute too.
	affectsWalls := false
	switch node.Kind() {
	case scene.KindWall, scene.KindLevel, scene.KindZone, scene.KindSite:
		affectsWalls = true
	}
	levelID := s.scene.LevelOf(req.NodeID)

	removed := s.scene.Remove(req.NodeID)
	if len(removed) == 0 {
		return
	}
	s.pub.Send("NodeRemoved", protocol.NodeRemoved{IDs: removed})
	if affectsWalls {
		s.recomputeWalls(levelID)
	}
}

func handleRequestPlaceItem(s *Session, req protocol.RequestPlaceItem) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	attach := scene.AttachType(req.AttachTo)
	item := &scene.ItemNode{
		Base:     scene.Base{ParentID: req.ParentID},
		Position: req.Position,
		Rotation: req.Rotation,
		Asset: scene.Asset{
			Name: req.Name,
			Dimensions: scene.Dimensions{
				Width:  req.Dimensions.Width,
				Height: req.Dimensions.Height,
				Depth:  req.Dimensions.Depth,
			},
			AttachTo: attach,
		},
		Side: scene.Side(req.Side),
	}

	var levelID string
	switch attach {
	case scene.AttachWall, scene.AttachWallSide:
		levelID = s.scene.LevelOf(req.ParentID)
		placement := s.spatial.CanPlaceOnWall(
			req.ParentID, req.Position[0],
			req.Dimensions.Width, req.Position[1], req.Dimensions.Height,
			attach, item.Side, nil,
		)
		if !placement.Valid {
			s.pub.Send("PlacementRejected", protocol.PlacementRejected{
				LevelID:     levelID,
				ConflictIDs: placement.ConflictIDs,
				Reason:      "wall placement blocked",
			})
			return
		}
		if placement.WasAdjusted {
			item.Position[1] = placement.AdjustedY
		}
	case scene.AttachCeiling:
		levelID = s.scene.LevelOf(req.ParentID)
		center := geometry.Pt(req.Position[0], req.Position[2])
		placement := s.spatial.CanPlaceOnCeiling(
			req.ParentID, center,
			req.Dimensions.Width, req.Dimensions.Depth, req.Rotation[1], nil,
		)
		if !placement.Valid {
			s.pub.Send("PlacementRejected", protocol.PlacementRejected{
				LevelID:     levelID,
				ConflictIDs: placement.ConflictIDs,
				Reason:      "ceiling placement blocked",
			})
			return
		}
	default:
		levelID = ensureLevel(s, req.LevelID)
		if item.ParentID == "" {
			item.ParentID = levelID
		}
		center := geometry.Pt(req.Position[0], req.Position[2])
		placement := s.spatial.CanPlaceOnFloor(
			levelID, center,
			req.Dimensions.Width, req.Dimensions.Depth, req.Rotation[1], nil,
		)
		if !placement.Valid {
			s.pub.Send("PlacementRejected", protocol.PlacementRejected{
				LevelID:     levelID,
				ConflictIDs: placement.ConflictIDs,
				Reason:      "floor placement blocked",
			})
			return
		}
		item.Position[1] = s.elevationBaseline(levelID, center,
			req.Dimensions.Width, req.Dimensions.Depth, req.Rotation[1])
	}

	if err := s.scene.Add(item); err != nil {
		log.Printf("place item: %v", err)
		return
	}
	s.pub.Send("NodeUpserted", protocol.NodeUpserted{
		Kind:    string(scene.KindItem),
		LevelID: levelID,
		Node:    item,
	})
}

func handleRequestMoveItem(s *Session, req protocol.RequestMoveItem) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	node, ok := s.scene.Get(req.ItemID)
	if !ok {
		log.Printf("move item: %s not found", req.ItemID)
		return
	}
	item, ok := node.(*scene.ItemNode)
	if !ok {
		log.Printf("move item: %s is a %s", req.ItemID, node.Kind())
		return
	}
	levelID := s.scene.LevelOf(req.ItemID)
	ignore := map[string]bool{req.ItemID: true}
	dims := item.Asset.Dimensions

	newPos := req.Position
	switch item.Asset.AttachTo {
	case scene.AttachWall, scene.AttachWallSide:
		placement := s.spatial.CanPlaceOnWall(
			item.Parent(), req.Position[0],
			dims.Width, req.Position[1], dims.Height,
			item.Asset.AttachTo, item.Side, ignore,
		)
		if !placement.Valid {
			s.pub.Send("PlacementRejected", protocol.PlacementRejected{
				LevelID:     levelID,
				ConflictIDs: placement.ConflictIDs,
				Reason:      "wall placement blocked",
			})
			return
		}
		if placement.WasAdjusted {
			newPos[1] = placement.AdjustedY
		}
	case scene.AttachCeiling:
		center := geometry.Pt(req.Position[0], req.Position[2])
		placement := s.spatial.CanPlaceOnCeiling(
			item.Parent(), center, dims.Width, dims.Depth, req.Rotation[1], ignore,
		)
		if !placement.Valid {
			s.pub.Send("PlacementRejected", protocol.PlacementRejected{
				LevelID:     levelID,
				ConflictIDs: placement.ConflictIDs,
				Reason:      "ceiling placement blocked",
			})
			return
		}
	default:
		center := geometry.Pt(req.Position[0], req.Position[2])
		placement := s.spatial.CanPlaceOnFloor(
			levelID, center, dims.Width, dims.Depth, req.Rotation[1], ignore,
		)
		if !placement.Valid {
			s.pub.Send("PlacementRejected", protocol.PlacementRejected{
				LevelID:     levelID,
				ConflictIDs: placement.ConflictIDs,
				Reason:      "floor placement blocked",
			})
			return
		}
		newPos[1] = s.elevationBaseline(levelID, center, dims.Width, dims.Depth, req.Rotation[1])
	}

	item.Position = newPos
	item.Rotation = req.Rotation
	if err := s.scene.Update(item); err != nil {
		log.Printf("move item: %v", err)
		return
	}
	s.pub.Send("NodeUpserted", protocol.NodeUpserted{
		Kind:    string(scene.KindItem),
		LevelID: levelID,
		Node:    item,
	})
}

func handleRequestAddSlab(s *Session, req protocol.RequestAddSlab) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	levelID := ensureLevel(s, req.LevelID)
	if req.Polygon.IsEmpty() {
		s.pub.Send("PlacementRejected", protocol.PlacementRejected{
			LevelID: levelID,
			Reason:  "slab polygon needs at least three points",
		})
		return
	}
	slab := &scene.SlabNode{
		Base:      scene.Base{ParentID: levelID},
		Polygon:   req.Polygon,
		Elevation: req.Elevation,
	}
	if err := s.scene.Add(slab); err != nil {
		log.Printf("add slab: %v", err)
		return
	}
	s.pub.Send("NodeUpserted", protocol.NodeUpserted{
		Kind:    string(scene.KindSlab),
		LevelID: levelID,
		Node:    slab,
	})
}

func handleRequestAddCeiling(s *Session, req protocol.RequestAddCeiling) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	levelID := ensureLevel(s, req.LevelID)
	if req.Polygon.IsEmpty() {
		s.pub.Send("PlacementRejected", protocol.PlacementRejected{
			LevelID: levelID,
			Reason:  "ceiling polygon needs at least three points",
		})
		return
	}
	ceiling := &scene.CeilingNode{
		Base:    scene.Base{ParentID: levelID},
		Polygon: req.Polygon,
		Height:  req.Height,
	}
	if err := s.scene.Add(ceiling); err != nil {
		log.Printf("add ceiling: %v", err)
		return
	}
	s.pub.Send("NodeUpserted", protocol.NodeUpserted{
		Kind:    string(scene.KindCeiling),
		LevelID: levelID,
		Node:    ceiling,
	})
}

func handleRequestAddRoof(s *Session, req protocol.RequestAddRoof) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	levelID := ensureLevel(s, req.LevelID)
	node := &scene.RoofNode{
		Base:               scene.Base{ParentID: levelID},
		Rise:               req.Rise,
		Run:                req.Run,
		CoverThickness:     req.CoverThickness,
		StructureThickness: req.StructureThickness,
		SideWallHeight:     req.SideWallHeight,
	}
	if err := s.scene.Add(node); err != nil {
		log.Printf("add roof: %v", err)
		return
	}
	s.pub.Send("NodeUpserted", protocol.NodeUpserted{
		Kind:    string(scene.KindRoof),
		LevelID: levelID,
		Node:    node,
	})
	s.pub.Send("RoofProfileChanged", protocol.RoofProfileChanged{
		LevelID: levelID,
		RoofID:  node.ID,
		Profile: roof.SolveProfile(req.Rise, req.Run, req.CoverThickness, req.StructureThickness, req.SideWallHeight),
	})
}

func handleRequestElevationAt(s *Session, req protocol.RequestElevationAt) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	levelID := req.LevelID
	if levelID == "" {
		levelID = scene.DefaultLevelID
	}
	s.pub.Send("ElevationResult", protocol.ElevationResult{
		LevelID:   levelID,
		X:         req.X,
		Z:         req.Z,
		Elevation: s.spatial.SlabElevationAt(levelID, req.X, req.Z),
	})
}

func handleRequestSavePlan(s *Session, req protocol.RequestSavePlan) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	name := req.Name
	if name == "" {
		name = s.cfg.PlanName
	}
	nodes := s.scene.All()
	if err := s.planDB.SavePlan(context.Background(), name, nodes); err != nil {
		log.Printf("save plan %q: %v", name, err)
		return
	}
	s.pub.Send("PlanSaved", protocol.PlanSaved{Name: name, Nodes: len(nodes)})
}
