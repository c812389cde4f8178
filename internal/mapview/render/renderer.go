package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"

	"yatramap/internal/mapview/grid"
	"yatramap/internal/mapview/viewport"
	"yatramap/internal/yatra/models"

	svg "github.com/ajstarks/svgo"
)

// ============================================================
// Renderer
// ============================================================

// Style - цвета и отступы карты.
type Style struct {
	Background   string
	GridLine     string
	Road         string
	StallFill    string
	StallBorder  string
	InactiveText string
	ActiveText   string
}

func DefaultStyle() Style {
	return Style{
		Background:   "#faf7f2",
		GridLine:     "rgba(0,0,0,0.04)",
		Road:         "#9ca3af",
		StallFill:    "#ffffff",
		StallBorder:  "#f97316",
		InactiveText: "#6b7280",
		ActiveText:   "#ea580c",
	}
}

type Renderer struct {
	style Style
}

func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// Render рисует карту в SVG с текущим масштабом и смещением вида.
// Размер документа равен размеру контейнера.
func (r *Renderer) Render(w io.Writer, v *viewport.Viewport) error {
	if v == nil {
		return fmt.Errorf("viewport is nil")
	}
	c := v.Container()
	if !c.Valid() {
		return fmt.Errorf("container size unknown")
	}

	canvas := svg.New(w)
	canvas.Start(int(math.Ceil(c.Width)), int(math.Ceil(c.Height)))
	canvas.Gtransform(transform(v.Offset(), v.Scale()))

	g := v.Grid()
	r.renderGrid(canvas, g)
	for _, it := range v.Items() {
		switch item := it.(type) {
		case models.RoadSegment:
			r.renderRoad(canvas, g, item)
		case models.Stall:
			r.renderStall(canvas, g, item)
		}
	}

	canvas.Gend()
	canvas.End()
	return nil
}

// RenderString - удобная обёртка для хендлеров.
func (r *Renderer) RenderString(v *viewport.Viewport) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderGrid(canvas *svg.SVG, g grid.Grid) {
	w, h := int(g.CanvasWidth()), int(g.CanvasHeight())
	canvas.Rect(0, 0, w, h, "fill:"+r.style.Background)

	line := "stroke:" + r.style.GridLine + ";stroke-width:1"
	for col := 0; col <= g.Cols; col++ {
		x := int(g.ToPixels(col))
		canvas.Line(x, 0, x, h, line)
	}
	for row := 0; row <= g.Rows; row++ {
		y := int(g.ToPixels(row))
		canvas.Line(0, y, w, y, line)
	}
}

func (r *Renderer) renderRoad(canvas *svg.SVG, g grid.Grid, road models.RoadSegment) {
	box := g.ItemRect(road.Cell(), road.Size())
	canvas.Roundrect(int(box.MinX), int(box.MinY), int(box.Width()), int(box.Height()), 2, 2,
		`data-road="`+html.EscapeString(road.ID)+`"`, "fill:"+r.style.Road)
}

// renderStall рисует ларёк с отступом 2px внутри клеток и номером по центру.
func (r *Renderer) renderStall(canvas *svg.SVG, g grid.Grid, stall models.Stall) {
	box := g.ItemRect(stall.Cell(), stall.Size())
	x, y := int(box.MinX)+2, int(box.MinY)+2
	w, h := int(box.Width())-4, int(box.Height())-4

	border, text := r.style.StallBorder, r.style.ActiveText
	if !stall.Active {
		border, text = r.style.InactiveText, r.style.InactiveText
	}

	canvas.Roundrect(x, y, w, h, 8, 8,
		`data-stall="`+html.EscapeString(stall.ID)+`"`,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", r.style.StallFill, border))

	size := labelSize(stall.Width)
	canvas.Text(x+w/2, y+h/2+size/3, stall.Label(),
		fmt.Sprintf("text-anchor:middle;font-weight:bold;font-size:%dpx;fill:%s", size, text))
}

// labelSize - размер шрифта номера: ширина*10, в пределах [14, 28].
func labelSize(width int) int {
	return max(14, min(width*10, 28))
}

func transform(offset grid.Point, scale float64) string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)",
		formatFloat(offset.X), formatFloat(offset.Y), formatFloat(scale))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
