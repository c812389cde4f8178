package viewport

import (
	"math"

	"yatramap/internal/mapview/grid"
	"yatramap/internal/yatra/models"
)

// ============================================================
// Content Bounds
// ============================================================

// PaddingCells - отступ вокруг содержимого в клетках.
const PaddingCells = 2

// ContentBounds считает пиксельный прямоугольник всех элементов с отступом
// PaddingCells, обрезанный по холсту. Для пустого списка - весь холст.
func ContentBounds(g grid.Grid, items []models.Item) grid.Rect {
	canvas := g.Canvas()
	if len(items) == 0 {
		return canvas
	}

	b := grid.Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: 0, MaxY: 0}
	for _, it := range items {
		p := it.Place()
		r := g.ItemRect(p.Cell(), p.Size())
		b.MinX = math.Min(b.MinX, r.MinX)
		b.MinY = math.Min(b.MinY, r.MinY)
		b.MaxX = math.Max(b.MaxX, r.MaxX)
		b.MaxY = math.Max(b.MaxY, r.MaxY)
	}

	pad := g.ToPixels(PaddingCells)
	return grid.Rect{
		MinX: math.Max(0, b.MinX-pad),
		MinY: math.Max(0, b.MinY-pad),
		MaxX: math.Min(canvas.MaxX, b.MaxX+pad),
		MaxY: math.Min(canvas.MaxY, b.MaxY+pad),
	}
}
