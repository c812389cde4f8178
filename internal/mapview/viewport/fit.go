package viewport

import (
	"math"

	"yatramap/internal/mapview/grid"
)

// ============================================================
// Fit & Center
// ============================================================

// MaxFitScale ограничивает масштаб вписывания для маленького содержимого.
const MaxFitScale = 2.5

// Container - размер области отображения в пикселях.
type Container struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (c Container) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

func (c Container) Center() grid.Point {
	return grid.Point{X: c.Width / 2, Y: c.Height / 2}
}

// Fit возвращает масштаб вписывания bounds в контейнер и смещение,
// центрирующее содержимое. Нулевые размеры содержимого считаются одной клеткой.
func Fit(g grid.Grid, c Container, bounds grid.Rect) (float64, grid.Point) {
	cell := float64(g.CellSize)
	w := math.Max(bounds.Width(), cell)
	h := math.Max(bounds.Height(), cell)

	scale := math.Min(math.Min(c.Width/w, c.Height/h), MaxFitScale)

	offset := grid.Point{
		X: (c.Width-w*scale)/2 - bounds.MinX*scale,
		Y: (c.Height-h*scale)/2 - bounds.MinY*scale,
	}
	return scale, offset
}
