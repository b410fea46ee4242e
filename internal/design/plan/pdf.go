package plan

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"roomdesigner/internal/design/models"

	"github.com/jung-kurt/gofpdf"
)

// A4 landscape layout in millimetres: plan on the left, legend on the right.
const (
	pageMargin  = 15.0
	planWidth   = 190.0
	planHeight  = 160.0
	planTop     = 30.0
	legendLeft  = pageMargin + planWidth + 10
	legendWidth = 297.0 - legendLeft - pageMargin
)

// WritePDF renders p as a one-page A4 landscape plan with a furniture legend.
func WritePDF(w io.Writer, p models.DesignProject) error {
	room := p.RoomConfig
	if room.Width <= 0 || room.Length <= 0 {
		return fmt.Errorf("room has no floor area: %gx%g", room.Width, room.Length)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(p.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pageMargin, pageMargin+5, p.Name)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageMargin, pageMargin+11, fmt.Sprintf("%s room, %g x %g m, ceiling %g m",
		room.Shape, room.Width, room.Length, room.Height))

	mm := math.Min(planWidth/room.Width, planHeight/room.Length)
	drawRoom(pdf, room, mm)
	for _, item := range p.Furniture {
		drawItem(pdf, item, mm)
	}
	drawLegend(pdf, p.Furniture)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawRoom(pdf *gofpdf.Fpdf, room models.RoomConfig, mm float64) {
	w, h := room.Width*mm, room.Length*mm

	r, g, b := hexRGB(room.FloorColor)
	pdf.SetFillColor(r, g, b)
	r, g, b = hexRGB(room.WallColor)
	if r > 200 && g > 200 && b > 200 {
		// white walls vanish on paper
		r, g, b = 60, 60, 60
	}
	pdf.SetDrawColor(r, g, b)
	pdf.SetLineWidth(0.8)
	pdf.Rect(pageMargin, planTop, w, h, "FD")

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	for x := 1.0; x < room.Width; x++ {
		pdf.Line(pageMargin+x*mm, planTop, pageMargin+x*mm, planTop+h)
	}
	for z := 1.0; z < room.Length; z++ {
		pdf.Line(pageMargin, planTop+z*mm, pageMargin+w, planTop+z*mm)
	}
}

func drawItem(pdf *gofpdf.Fpdf, item models.FurnitureItem, mm float64) {
	fw, fd := item.Footprint()
	w, d := fw*mm, fd*mm
	cx := pageMargin + item.Position.X*mm
	cy := planTop + item.Position.Z*mm

	r, g, b := hexRGB(item.Color)
	pdf.SetFillColor(r, g, b)
	pdf.SetDrawColor(r/2, g/2, b/2)
	pdf.SetLineWidth(0.3)

	pdf.TransformBegin()
	// gofpdf rotates counter-clockwise; the plan's y axis points down.
	pdf.TransformRotate(-models.RadToDeg(item.Rotation.Y), cx, cy)
	pdf.Rect(cx-w/2, cy-d/2, w, d, "FD")
	pdf.TransformEnd()

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(0, 0, 0)
	label := strings.Fields(item.Name)
	if len(label) > 0 {
		pdf.Text(cx-pdf.GetStringWidth(label[0])/2, cy+1, label[0])
	}
}

func drawLegend(pdf *gofpdf.Fpdf, items []models.FurnitureItem) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(legendLeft, planTop)
	pdf.CellFormat(legendWidth, 7, "Furniture", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	if len(items) == 0 {
		pdf.SetX(legendLeft)
		pdf.CellFormat(legendWidth, 6, "No furniture placed", "", 1, "L", false, 0, "")
		return
	}
	for _, item := range items {
		r, g, b := hexRGB(item.Color)
		y := pdf.GetY()
		pdf.SetFillColor(r, g, b)
		pdf.Rect(legendLeft, y+1.5, 3, 3, "F")

		pdf.SetXY(legendLeft+5, y)
		pdf.CellFormat(legendWidth-5, 6,
			fmt.Sprintf("%s (%s) at %.2f, %.2f", item.Name, item.Type, item.Position.X, item.Position.Z),
			"", 1, "L", false, 0, "")
	}
}

// hexRGB parses #RRGGBB. Anything else draws grey.
func hexRGB(color string) (int, int, int) {
	if len(color) != 7 || color[0] != '#' {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(color[1:], 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
