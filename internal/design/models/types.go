package models

import "time"

// ============================================================
// Geometry primitives
// ============================================================

// Vec3 is a 3-component vector: meters for position, radians for rotation,
// plain multipliers for scale.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

type Size struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
	Depth  float64 `json:"depth" validate:"gt=0"`
}

// ============================================================
// Enums
// ============================================================

type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeSquare    Shape = "square"
	ShapeLShape    Shape = "l-shape"
)

type FurnitureType string

const (
	FurnitureChair   FurnitureType = "chair"
	FurnitureTable   FurnitureType = "table"
	FurnitureSofa    FurnitureType = "sofa"
	FurnitureBed     FurnitureType = "bed"
	FurnitureCabinet FurnitureType = "cabinet"
	FurnitureShelf   FurnitureType = "shelf"
)

// FurnitureTypes lists every furniture type in catalog order.
var FurnitureTypes = []FurnitureType{
	FurnitureChair,
	FurnitureTable,
	FurnitureSofa,
	FurnitureBed,
	FurnitureCabinet,
	FurnitureShelf,
}

func (t FurnitureType) Valid() bool {
	for _, known := range FurnitureTypes {
		if t == known {
			return true
		}
	}
	return false
}

type View string

const (
	View2D View = "2d"
	View3D View = "3d"
)

func (v View) Valid() bool {
	return v == View2D || v == View3D
}

// ============================================================
// Room & furniture
// ============================================================

type RoomConfig struct {
	Width        float64 `json:"width"`
	Length       float64 `json:"length"`
	Height       float64 `json:"height"`
	Shape        Shape   `json:"shape"`
	FloorColor   string  `json:"floorColor"`
	WallColor    string  `json:"wallColor"`
	FloorTexture *string `json:"floorTexture,omitempty"`
	WallTexture  *string `json:"wallTexture,omitempty"`
}

// Clone returns a copy that shares no pointers with rc.
func (rc RoomConfig) Clone() RoomConfig {
	out := rc
	out.FloorTexture = cloneString(rc.FloorTexture)
	out.WallTexture = cloneString(rc.WallTexture)
	return out
}

// DefaultRoomConfig is the room every new project starts with.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Width:      5,
		Length:     5,
		Height:     2.7,
		Shape:      ShapeRectangle,
		FloorColor: "#F5F5F0",
		WallColor:  "#FFFFFF",
	}
}

type FurnitureItem struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     FurnitureType `json:"type"`
	Position Vec3          `json:"position"`
	Rotation Vec3          `json:"rotation"`
	Scale    Vec3          `json:"scale"`
	Color    string        `json:"color"`
	Size     Size          `json:"size"`
}

// FurnitureSpec is a furniture item before the store assigns it an id.
type FurnitureSpec struct {
	Name     string        `json:"name" validate:"required,max=80"`
	Type     FurnitureType `json:"type" validate:"required,oneof=chair table sofa bed cabinet shelf"`
	Position Vec3          `json:"position"`
	Rotation Vec3          `json:"rotation"`
	Scale    Vec3          `json:"scale"`
	Color    string        `json:"color" validate:"required,hexcolor"`
	Size     Size          `json:"size"`
}

func (s FurnitureSpec) WithID(id string) FurnitureItem {
	return FurnitureItem{
		ID:       id,
		Name:     s.Name,
		Type:     s.Type,
		Position: s.Position,
		Rotation: s.Rotation,
		Scale:    s.Scale,
		Color:    s.Color,
		Size:     s.Size,
	}
}

// ============================================================
// Project
// ============================================================

type DesignProject struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	RoomConfig RoomConfig      `json:"roomConfig"`
	Furniture  []FurnitureItem `json:"furniture"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Clone deep-copies the project so the copy can be handed out or stored
// without aliasing the original's furniture slice or texture pointers.
func (p DesignProject) Clone() DesignProject {
	out := p
	out.RoomConfig = p.RoomConfig.Clone()
	out.Furniture = make([]FurnitureItem, len(p.Furniture))
	copy(out.Furniture, p.Furniture)
	return out
}

// FindFurniture returns the index of the item with id, or -1.
func (p DesignProject) FindFurniture(id string) int {
	for i := range p.Furniture {
		if p.Furniture[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
