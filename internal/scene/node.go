package scene

import "github.com/planwright/floorplan-engine/internal/geometry"

// Kind discriminates the node variants. The set is closed: dispatch
// sites switch over it exhaustively instead of casting ad hoc.
type Kind string

const (
	KindSite    Kind = "site"
	KindLevel   Kind = "level"
	KindZone    Kind = "zone"
	KindWall    Kind = "wall"
	KindSlab    Kind = "slab"
	KindCeiling Kind = "ceiling"
	KindRoof    Kind = "roof"
	KindDoor    Kind = "door"
	KindWindow  Kind = "window"
	KindStair   Kind = "stair"
	KindItem    Kind = "item"
)

// AttachType describes which surface an item mounts to. Empty means the
// item sits on the floor.
type AttachType string

const (
	AttachNone     AttachType = ""
	AttachWall     AttachType = "wall"
	AttachWallSide AttachType = "wall-side"
	AttachCeiling  AttachType = "ceiling"
)

// Side names a wall face for single-side attachments.
type Side string

const (
	SideNone  Side = ""
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Base carries the identity and containment fields shared by every node.
type Base struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId,omitempty"`
}

func (b *Base) NodeID() string { return b.ID }
func (b *Base) Parent() string { return b.ParentID }
func (b *Base) base() *Base    { return b }

// Node is any placed entity in the plan. Concrete types are the structs
// below; nothing outside this package implements it.
type Node interface {
	NodeID() string
	Parent() string
	Kind() Kind
	base() *Base
}

// Dimensions is an item's bounding box in meters.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Asset is the catalog entry an item instantiates.
type Asset struct {
	Name       string     `json:"name,omitempty"`
	Dimensions Dimensions `json:"dimensions"`
	AttachTo   AttachType `json:"attachTo,omitempty"`
}

// SiteNode is the root container of a plan.
type SiteNode struct {
	Base
	Name string `json:"name,omitempty"`
}

func (*SiteNode) Kind() Kind { return KindSite }

// LevelNode is one storey. Children are walls, zones, slabs and
// ceilings; items hang off those.
type LevelNode struct {
	Base
	Level int `json:"level"`
}

func (*LevelNode) Kind() Kind { return KindLevel }

// ZoneNode marks a named region of a level.
type ZoneNode struct {
	Base
	Name    string           `json:"name,omitempty"`
	Polygon geometry.Polygon `json:"polygon,omitempty"`
}

func (*ZoneNode) Kind() Kind { return KindZone }

// WallNode is a straight wall segment in level-local coordinates.
// Degenerate walls (start == end) are kept in the store but contribute
// no geometry.
type WallNode struct {
	Base
	Start     geometry.Point `json:"start"`
	End       geometry.Point `json:"end"`
	Thickness float64        `json:"thickness"`
	Height    float64        `json:"height"`
}

func (*WallNode) Kind() Kind { return KindWall }

// Length returns the wall's run, zero for degenerate walls.
func (w *WallNode) Length() float64 {
	return w.End.Sub(w.Start).Length()
}

// Direction returns the unit vector from start to end.
func (w *WallNode) Direction() geometry.Point {
	return w.End.Sub(w.Start).Normalize()
}

// SlabNode is a floor plate. The polygon is implicitly closed.
type SlabNode struct {
	Base
	Polygon   geometry.Polygon `json:"polygon"`
	Elevation float64          `json:"elevation"`
	Thickness float64          `json:"thickness,omitempty"`
}

func (*SlabNode) Kind() Kind { return KindSlab }

// CeilingNode is an overhead plate items can attach to.
type CeilingNode struct {
	Base
	Polygon geometry.Polygon `json:"polygon"`
	Height  float64          `json:"height"`
}

func (*CeilingNode) Kind() Kind { return KindCeiling }

// RoofNode holds the pitch constraint inputs for a roof span.
type RoofNode struct {
	Base
	Rise               float64 `json:"rise"`
	Run                float64 `json:"run"`
	CoverThickness     float64 `json:"coverThickness"`
	StructureThickness float64 `json:"structureThickness"`
	SideWallHeight     float64 `json:"sideWallHeight,omitempty"`
}

func (*RoofNode) Kind() Kind { return KindRoof }

// DoorNode is a wall cutout. Position is the distance along the parent
// wall from its start.
type DoorNode struct {
	Base
	Position float64 `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

func (*DoorNode) Kind() Kind { return KindDoor }

// WindowNode is a wall cutout with a sill.
type WindowNode struct {
	Base
	Position   float64 `json:"position"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	SillHeight float64 `json:"sillHeight"`
}

func (*WindowNode) Kind() Kind { return KindWindow }

// StairNode is a straight stair run.
type StairNode struct {
	Base
	Position   [3]float64 `json:"position"`
	Rotation   [3]float64 `json:"rotation"`
	Steps      int        `json:"steps"`
	StepHeight float64    `json:"stepHeight"`
	Width      float64    `json:"width"`
}

func (*StairNode) Kind() Kind { return KindStair }

// ItemNode is a placed furniture or fixture instance. Position is
// level-local for floor items and attachment-local for mounted items
// (X is the distance along the wall, Y the mount height).
type ItemNode struct {
	Base
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	Asset    Asset      `json:"asset"`
	Side     Side       `json:"side,omitempty"`
}

func (*ItemNode) Kind() Kind { return KindItem }

// containerKinds lists the kinds whose children lists are maintained by
// the store.
func isContainer(k Kind) bool {
	switch k {
	case KindSite, KindLevel, KindZone, KindWall, KindCeiling, KindSlab:
		return true
	}
	return false
}
