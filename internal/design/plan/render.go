// Package plan draws a project as a 2D top-down floor plan (SVG, PDF) and
// reads such an SVG back into a room and a furniture list.
package plan

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"roomdesigner/internal/design/models"
)

const (
	// PixelsPerMeter matches the 2D canvas.
	PixelsPerMeter = 50.0
	Margin         = 50.0

	RoomID       = "room"
	selectStroke = "#2563EB"
)

// ============================================================
// Renderer
// ============================================================

type Renderer struct {
	scale  float64
	margin float64
}

func NewRenderer() *Renderer {
	return &Renderer{scale: PixelsPerMeter, margin: Margin}
}

// Render builds the SVG plan of p. The item whose id equals selected, if
// any, is outlined in the selection color.
func (r *Renderer) Render(p models.DesignProject, selected string) (string, error) {
	room := p.RoomConfig
	if room.Width <= 0 || room.Length <= 0 {
		return "", fmt.Errorf("room has no floor area: %gx%g", room.Width, room.Length)
	}

	width := room.Width*r.scale + 2*r.margin
	height := room.Length*r.scale + 2*r.margin

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" data-project-id="%s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height), attr(p.ID)))
	b.WriteString("\n")

	for _, elem := range r.renderRoom(p) {
		b.WriteString("  ")
		b.WriteString(elem)
		b.WriteString("\n")
	}

	b.WriteString(`  <g id="furniture">` + "\n")
	for _, item := range p.Furniture {
		b.WriteString("    ")
		b.WriteString(r.renderItem(item, item.ID == selected))
		b.WriteString("\n")
	}
	b.WriteString("  </g>\n")

	b.WriteString(`</svg>`)
	return b.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderRoom(p models.DesignProject) []string {
	room := p.RoomConfig
	w, h := room.Width*r.scale, room.Length*r.scale
	s := formatFloat(r.scale)

	out := []string{
		fmt.Sprintf(`<title>%s</title>`, html.EscapeString(p.Name)),
		fmt.Sprintf(`<defs><pattern id="grid" width="%s" height="%s" patternUnits="userSpaceOnUse"><path d="M %s 0 L 0 0 0 %s" fill="none" stroke="#000" stroke-width="1" /></pattern></defs>`, s, s, s, s),
		fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="2" data-shape="%s" data-height="%s"%s />`,
			RoomID, formatFloat(r.margin), formatFloat(r.margin), formatFloat(w), formatFloat(h),
			attr(room.FloorColor), attr(room.WallColor), attr(string(room.Shape)), formatFloat(room.Height), textureAttrs(room)),
		fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="url(#grid)" opacity="0.2" />`,
			formatFloat(r.margin), formatFloat(r.margin), formatFloat(w), formatFloat(h)),
		fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" font-size="12">%sm</text>`,
			formatFloat(r.margin+w/2), formatFloat(r.margin-10), formatFloat(room.Width)),
		fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" font-size="12" transform="rotate(-90 %s %s)">%sm</text>`,
			formatFloat(r.margin-10), formatFloat(r.margin+h/2), formatFloat(r.margin-10), formatFloat(r.margin+h/2), formatFloat(room.Length)),
	}
	if room.Shape == models.ShapeLShape {
		out = append(out, r.renderLCutout(room))
	}
	return out
}

// renderLCutout marks the quarter of the bounding box an L-shaped room
// gives up. Only a visual hint; the room rect stays authoritative.
func (r *Renderer) renderLCutout(room models.RoomConfig) string {
	w, h := room.Width*r.scale/2, room.Length*r.scale/2
	return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="#FFFFFF" stroke="%s" stroke-dasharray="4 4" />`,
		formatFloat(r.margin+w), formatFloat(r.margin), formatFloat(w), formatFloat(h), attr(room.WallColor))
}

func (r *Renderer) renderItem(item models.FurnitureItem, selected bool) string {
	fw, fd := item.Footprint()
	w, d := fw*r.scale, fd*r.scale
	cx := r.margin + item.Position.X*r.scale
	cy := r.margin + item.Position.Z*r.scale

	stroke := item.Color
	if selected {
		stroke = selectStroke
	}

	var transform string
	if deg := models.RadToDeg(item.Rotation.Y); deg != 0 {
		transform = fmt.Sprintf(` transform="rotate(%s %s %s)"`, formatFloat(round(deg)), formatFloat(cx), formatFloat(cy))
	}

	return fmt.Sprintf(`<rect id="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.25" stroke="%s" stroke-width="2"%s data-type="%s" data-name="%s" data-size="%s" data-position="%s" data-rotation="%s" data-scale="%s" />`,
		attr(item.ID),
		formatFloat(cx-w/2), formatFloat(cy-d/2), formatFloat(w), formatFloat(d),
		attr(item.Color), attr(stroke), transform,
		attr(string(item.Type)), attr(item.Name),
		formatTriple(item.Size.Width, item.Size.Height, item.Size.Depth),
		formatVec(item.Position), formatVec(item.Rotation), formatVec(item.Scale),
	)
}

func textureAttrs(room models.RoomConfig) string {
	var out string
	if room.FloorTexture != nil {
		out += fmt.Sprintf(` data-floor-texture="%s"`, attr(*room.FloorTexture))
	}
	if room.WallTexture != nil {
		out += fmt.Sprintf(` data-wall-texture="%s"`, attr(*room.WallTexture))
	}
	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func attr(s string) string {
	return html.EscapeString(s)
}

// round trims float noise from unit conversions to 1e-9.
func round(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatTriple(a, b, c float64) string {
	return formatFloat(a) + " " + formatFloat(b) + " " + formatFloat(c)
}

func formatVec(v models.Vec3) string {
	return formatTriple(v.X, v.Y, v.Z)
}
