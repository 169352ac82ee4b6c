package protocol

import (
	"github.com/planwright/floorplan-engine/internal/miter"
	"github.com/planwright/floorplan-engine/internal/roof"
	"github.com/planwright/floorplan-engine/internal/rooms"
)

// PatchEnvelope frames every server-to-client update. Sequence numbers
// are monotonic per session so clients can detect missed patches.
type PatchEnvelope struct {
	Sequence uint64 `json:"seq"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

// NodeUpserted announces a created or updated node. The node is the
// scene variant serialized as-is.
type NodeUpserted struct {
	Kind    string `json:"kind"`
	LevelID string `json:"levelId"`
	Node    any    `json:"node"`
}

// NodeRemoved announces a deletion, including cascade-deleted children.
type NodeRemoved struct {
	IDs []string `json:"ids"`
}

// PlacementRejected reports a failed placement query back to the
// requesting client.
type PlacementRejected struct {
	LevelID     string   `json:"levelId"`
	ConflictIDs []string `json:"conflictIds"`
	Reason      string   `json:"reason,omitempty"`
}

// WallMitersChanged carries the recomputed miter map for one level.
type WallMitersChanged struct {
	LevelID string                      `json:"levelId"`
	Miters  map[string]*miter.WallMiter `json:"miters"`
}

// RoomsChanged carries the rooms of one level after a detection pass.
type RoomsChanged struct {
	LevelID string       `json:"levelId"`
	Rooms   []rooms.Room `json:"rooms"`
}

// WallSidesChanged carries the per-wall face classification of one
// level after a detection pass.
type WallSidesChanged struct {
	LevelID string                     `json:"levelId"`
	Sides   map[string]rooms.WallSides `json:"sides"`
}

// RoofProfileChanged carries the solved cross-section for a roof node.
type RoofProfileChanged struct {
	LevelID string       `json:"levelId"`
	RoofID  string       `json:"roofId"`
	Profile roof.Profile `json:"profile"`
}

// ElevationResult answers a RequestElevationAt query.
type ElevationResult struct {
	LevelID   string  `json:"levelId"`
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Elevation float64 `json:"elevation"`
}

// PlanSaved confirms a persistence request.
type PlanSaved struct {
	Name  string `json:"name"`
	Nodes int    `json:"nodes"`
}
