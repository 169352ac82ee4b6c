package protocol

import (
	"encoding/json"

	"github.com/planwright/floorplan-engine/internal/geometry"
)

// IntentEnvelope frames every client request on the stream.
type IntentEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dimensions mirrors an asset bounding box on the wire.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

type RequestAddWall struct {
	LevelID   string         `json:"levelId"`
	Start     geometry.Point `json:"start"`
	End       geometry.Point `json:"end"`
	Thickness float64        `json:"thickness"`
	Height    float64        `json:"height"`
}

type RequestMoveWall struct {
	WallID string         `json:"wallId"`
	Start  geometry.Point `json:"start"`
	End    geometry.Point `json:"end"`
}

type RequestRemoveNode struct {
	NodeID string `json:"nodeId"`
}

type RequestPlaceItem struct {
	LevelID    string     `json:"levelId"`
	ParentID   string     `json:"parentId,omitempty"`
	Name       string     `json:"name,omitempty"`
	Position   [3]float64 `json:"position"`
	Rotation   [3]float64 `json:"rotation"`
	Dimensions Dimensions `json:"dimensions"`
	AttachTo   string     `json:"attachTo,omitempty"`
	Side       string     `json:"side,omitempty"`
}

type RequestMoveItem struct {
	ItemID   string     `json:"itemId"`
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
}

type RequestAddSlab struct {
	LevelID   string           `json:"levelId"`
	Polygon   geometry.Polygon `json:"polygon"`
	Elevation float64          `json:"elevation"`
}

type RequestAddCeiling struct {
	LevelID string           `json:"levelId"`
	Polygon geometry.Polygon `json:"polygon"`
	Height  float64          `json:"height"`
}

type RequestAddRoof struct {
	LevelID            string  `json:"levelId"`
	Rise               float64 `json:"rise"`
	Run                float64 `json:"run"`
	CoverThickness     float64 `json:"coverThickness"`
	StructureThickness float64 `json:"structureThickness"`
	SideWallHeight     float64 `json:"sideWallHeight"`
}

type RequestElevationAt struct {
	LevelID string  `json:"levelId"`
	X       float64 `json:"x"`
	Z       float64 `json:"z"`
}

type RequestSavePlan struct {
	Name string `json:"name"`
}
