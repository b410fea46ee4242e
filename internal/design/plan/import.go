package plan

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"roomdesigner/internal/design/models"
)

var (
	ErrNoRoom = errors.New("plan has no room outline")

	rotateRe = regexp.MustCompile(`rotate\(\s*([-+0-9.eE]+)`)
)

// ============================================================
// XML Structures
// ============================================================

type svgDoc struct {
	XMLName xml.Name   `xml:"svg"`
	Title   string     `xml:"title"`
	Rects   []svgRect  `xml:"rect"`
	Groups  []svgGroup `xml:"g"`
}

type svgGroup struct {
	ID     string     `xml:"id,attr"`
	Rects  []svgRect  `xml:"rect"`
	Groups []svgGroup `xml:"g"`
}

type svgRect struct {
	ID        string  `xml:"id,attr"`
	X         float64 `xml:"x,attr"`
	Y         float64 `xml:"y,attr"`
	Width     float64 `xml:"width,attr"`
	Height    float64 `xml:"height,attr"`
	Fill      string  `xml:"fill,attr"`
	Stroke    string  `xml:"stroke,attr"`
	Transform string  `xml:"transform,attr"`

	Shape        string  `xml:"data-shape,attr"`
	RoomHeight   float64 `xml:"data-height,attr"`
	FloorTexture string  `xml:"data-floor-texture,attr"`
	WallTexture  string  `xml:"data-wall-texture,attr"`

	Type     string `xml:"data-type,attr"`
	Name     string `xml:"data-name,attr"`
	Size     string `xml:"data-size,attr"`
	Position string `xml:"data-position,attr"`
	Rotation string `xml:"data-rotation,attr"`
	Scale    string `xml:"data-scale,attr"`
}

// Imported is a plan read back from SVG, ready to become a new project.
type Imported struct {
	Name      string                 `json:"name"`
	Room      models.RoomConfig      `json:"roomConfig"`
	Furniture []models.FurnitureSpec `json:"furniture"`
}

// RoomPatch turns the imported room into an update of a default room.
func (im Imported) RoomPatch() models.RoomPatch {
	room := im.Room.Clone()
	return models.RoomPatch{
		Width:        &room.Width,
		Length:       &room.Length,
		Height:       &room.Height,
		Shape:        &room.Shape,
		FloorColor:   &room.FloorColor,
		WallColor:    &room.WallColor,
		FloorTexture: room.FloorTexture,
		WallTexture:  room.WallTexture,
	}
}

// ============================================================
// Parser
// ============================================================

// Import reads an SVG plan: the rect with id "room" gives the room, every
// rect carrying data-type is a furniture item. Missing data- attributes fall
// back to the drawn geometry.
func Import(r io.Reader) (Imported, error) {
	var doc svgDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Imported{}, fmt.Errorf("decode svg: %w", err)
	}

	rects := collectRects(doc.Rects, doc.Groups)

	var room *svgRect
	for i := range rects {
		if rects[i].ID == RoomID {
			room = &rects[i]
			break
		}
	}
	if room == nil {
		return Imported{}, ErrNoRoom
	}

	out := Imported{
		Name: strings.TrimSpace(doc.Title),
		Room: roomFromRect(*room),
	}
	if err := models.Validate(out.RoomPatch()); err != nil {
		return Imported{}, fmt.Errorf("room: %w", err)
	}

	for _, rect := range rects {
		if rect.Type == "" {
			continue
		}
		spec := specFromRect(rect, room.X, room.Y)
		if err := models.Validate(spec); err != nil {
			return Imported{}, fmt.Errorf("furniture %q: %w", rect.ID, err)
		}
		out.Furniture = append(out.Furniture, spec)
	}
	return out, nil
}

func collectRects(rects []svgRect, groups []svgGroup) []svgRect {
	out := append([]svgRect(nil), rects...)
	for _, g := range groups {
		out = append(out, collectRects(g.Rects, g.Groups)...)
	}
	return out
}

func roomFromRect(rect svgRect) models.RoomConfig {
	room := models.DefaultRoomConfig()
	room.Width = rect.Width / PixelsPerMeter
	room.Length = rect.Height / PixelsPerMeter
	if rect.RoomHeight > 0 {
		room.Height = rect.RoomHeight
	}
	if rect.Shape != "" {
		room.Shape = models.Shape(rect.Shape)
	}
	if rect.Fill != "" {
		room.FloorColor = rect.Fill
	}
	if rect.Stroke != "" {
		room.WallColor = rect.Stroke
	}
	if rect.FloorTexture != "" {
		tex := rect.FloorTexture
		room.FloorTexture = &tex
	}
	if rect.WallTexture != "" {
		tex := rect.WallTexture
		room.WallTexture = &tex
	}
	return room
}

func specFromRect(rect svgRect, originX, originY float64) models.FurnitureSpec {
	t := models.FurnitureType(rect.Type)
	spec, ok := models.Template(t)
	if !ok {
		spec = models.FurnitureSpec{Type: t, Scale: models.Vec3{X: 1, Y: 1, Z: 1}, Size: models.Size{Height: 1}}
	}
	if rect.Name != "" {
		spec.Name = rect.Name
	}
	if rect.Fill != "" {
		spec.Color = rect.Fill
	}

	if scale, ok := parseVec(rect.Scale); ok {
		spec.Scale = scale
	}
	if size, ok := parseVec(rect.Size); ok {
		spec.Size = models.Size{Width: size.X, Height: size.Y, Depth: size.Z}
	} else {
		spec.Scale = models.Vec3{X: 1, Y: 1, Z: 1}
		spec.Size.Width = rect.Width / PixelsPerMeter
		spec.Size.Depth = rect.Height / PixelsPerMeter
	}

	if pos, ok := parseVec(rect.Position); ok {
		spec.Position = pos
	} else {
		spec.Position = models.Vec3{
			X: (rect.X + rect.Width/2 - originX) / PixelsPerMeter,
			Z: (rect.Y + rect.Height/2 - originY) / PixelsPerMeter,
		}
	}

	if rot, ok := parseVec(rect.Rotation); ok {
		spec.Rotation = rot
	} else if m := rotateRe.FindStringSubmatch(rect.Transform); m != nil {
		if deg, err := strconv.ParseFloat(m[1], 64); err == nil {
			spec.Rotation = models.Vec3{Y: models.DegToRad(deg)}
		}
	}
	return spec
}

func parseVec(s string) (models.Vec3, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return models.Vec3{}, false
	}
	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return models.Vec3{}, false
		}
		v[i] = n
	}
	return models.Vec3{X: v[0], Y: v[1], Z: v[2]}, true
}
