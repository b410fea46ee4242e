package models

// ============================================================
// Furniture catalog
// ============================================================

var templates = map[FurnitureType]FurnitureSpec{
	FurnitureChair:   template("Modern Chair", FurnitureChair, "#8B7355", 0.6, 0.8, 0.6),
	FurnitureTable:   template("Dining Table", FurnitureTable, "#654321", 1.8, 0.75, 0.9),
	FurnitureSofa:    template("Modern Sofa", FurnitureSofa, "#4A5568", 2.2, 0.85, 0.9),
	FurnitureBed:     template("Queen Bed", FurnitureBed, "#2D3748", 2.0, 0.6, 1.6),
	FurnitureCabinet: template("Storage Cabinet", FurnitureCabinet, "#744210", 1.2, 1.8, 0.4),
	FurnitureShelf:   template("Book Shelf", FurnitureShelf, "#8B4513", 0.8, 2.0, 0.3),
}

func template(name string, t FurnitureType, color string, width, height, depth float64) FurnitureSpec {
	return FurnitureSpec{
		Name:  name,
		Type:  t,
		Scale: Vec3{X: 1, Y: 1, Z: 1},
		Color: color,
		Size:  Size{Width: width, Height: height, Depth: depth},
	}
}

// Template returns the catalog entry for t.
func Template(t FurnitureType) (FurnitureSpec, bool) {
	spec, ok := templates[t]
	return spec, ok
}

// Templates returns the catalog in FurnitureTypes order.
func Templates() []FurnitureSpec {
	out := make([]FurnitureSpec, 0, len(FurnitureTypes))
	for _, t := range FurnitureTypes {
		out = append(out, templates[t])
	}
	return out
}

// ============================================================
// Room color presets
// ============================================================

type ColorPreset struct {
	Name  string `json:"name"`
	Floor string `json:"floor"`
	Wall  string `json:"wall"`
}

var colorPresets = []ColorPreset{
	{Name: "Classic White", Floor: "#F5F5F0", Wall: "#FFFFFF"},
	{Name: "Warm Beige", Floor: "#F0E6D2", Wall: "#FAF7F2"},
	{Name: "Modern Gray", Floor: "#E5E7EB", Wall: "#F3F4F6"},
	{Name: "Dark Oak", Floor: "#8B4513", Wall: "#F5F5DC"},
	{Name: "Cool Concrete", Floor: "#BEBEBE", Wall: "#E8E8E8"},
}

func ColorPresets() []ColorPreset {
	out := make([]ColorPreset, len(colorPresets))
	copy(out, colorPresets)
	return out
}

// Patch turns the preset into a room update touching only the colors.
func (p ColorPreset) Patch() RoomPatch {
	floor, wall := p.Floor, p.Wall
	return RoomPatch{FloorColor: &floor, WallColor: &wall}
}

// PresetByName matches case-sensitively on the display name.
func PresetByName(name string) (ColorPreset, bool) {
	for _, p := range colorPresets {
		if p.Name == name {
			return p, true
		}
	}
	return ColorPreset{}, false
}
