package models

// ============================================================
// Partial updates
// ============================================================

// Vec3Patch updates only the components that are set.
type Vec3Patch struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

func (p *Vec3Patch) Apply(v Vec3) Vec3 {
	if p == nil {
		return v
	}
	if p.X != nil {
		v.X = *p.X
	}
	if p.Y != nil {
		v.Y = *p.Y
	}
	if p.Z != nil {
		v.Z = *p.Z
	}
	return v
}

// Full returns a patch that sets every component of v.
func (v Vec3) Full() *Vec3Patch {
	x, y, z := v.X, v.Y, v.Z
	return &Vec3Patch{X: &x, Y: &y, Z: &z}
}

type SizePatch struct {
	Width  *float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height *float64 `json:"height,omitempty" validate:"omitempty,gt=0"`
	Depth  *float64 `json:"depth,omitempty" validate:"omitempty,gt=0"`
}

func (p *SizePatch) Apply(s Size) Size {
	if p == nil {
		return s
	}
	if p.Width != nil {
		s.Width = *p.Width
	}
	if p.Height != nil {
		s.Height = *p.Height
	}
	if p.Depth != nil {
		s.Depth = *p.Depth
	}
	return s
}

type FurniturePatch struct {
	Name     *string        `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	Type     *FurnitureType `json:"type,omitempty" validate:"omitempty,oneof=chair table sofa bed cabinet shelf"`
	Position *Vec3Patch     `json:"position,omitempty"`
	Rotation *Vec3Patch     `json:"rotation,omitempty"`
	Scale    *Vec3Patch     `json:"scale,omitempty"`
	Color    *string        `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Size     *SizePatch     `json:"size,omitempty"`
}

// Apply merges the set fields into item. The id is never touched.
func (p FurniturePatch) Apply(item FurnitureItem) FurnitureItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	item.Position = p.Position.Apply(item.Position)
	item.Rotation = p.Rotation.Apply(item.Rotation)
	item.Scale = p.Scale.Apply(item.Scale)
	if p.Color != nil {
		item.Color = *p.Color
	}
	item.Size = p.Size.Apply(item.Size)
	return item
}

func (p FurniturePatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Position == nil && p.Rotation == nil &&
		p.Scale == nil && p.Color == nil && p.Size == nil
}

// RoomPatch bounds mirror the room setup form.
type RoomPatch struct {
	Width        *float64 `json:"width,omitempty" validate:"omitempty,gte=1,lte=20"`
	Length       *float64 `json:"length,omitempty" validate:"omitempty,gte=1,lte=20"`
	Height       *float64 `json:"height,omitempty" validate:"omitempty,gte=2,lte=5"`
	Shape        *Shape   `json:"shape,omitempty" validate:"omitempty,oneof=rectangle square l-shape"`
	FloorColor   *string  `json:"floorColor,omitempty" validate:"omitempty,hexcolor"`
	WallColor    *string  `json:"wallColor,omitempty" validate:"omitempty,hexcolor"`
	FloorTexture *string  `json:"floorTexture,omitempty"`
	WallTexture  *string  `json:"wallTexture,omitempty"`
}

func (p RoomPatch) Apply(rc RoomConfig) RoomConfig {
	rc = rc.Clone()
	if p.Width != nil {
		rc.Width = *p.Width
	}
	if p.Length != nil {
		rc.Length = *p.Length
	}
	if p.Height != nil {
		rc.Height = *p.Height
	}
	if p.Shape != nil {
		rc.Shape = *p.Shape
	}
	if p.FloorColor != nil {
		rc.FloorColor = *p.FloorColor
	}
	if p.WallColor != nil {
		rc.WallColor = *p.WallColor
	}
	if p.FloorTexture != nil {
		rc.FloorTexture = cloneString(p.FloorTexture)
	}
	if p.WallTexture != nil {
		rc.WallTexture = cloneString(p.WallTexture)
	}
	return rc
}
