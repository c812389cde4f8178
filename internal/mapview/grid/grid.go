package grid

import "math"

// ============================================================
// Grid
// ============================================================

const (
	DefaultCellSize = 40
	DefaultCols     = 20
	DefaultRows     = 15
)

// Grid описывает логическую сетку карты. Все позиции и размеры элементов
// хранятся в клетках, пиксели получаются умножением на CellSize.
type Grid struct {
	CellSize int `json:"cell_size" yaml:"cell_size"`
	Cols     int `json:"cols" yaml:"cols"`
	Rows     int `json:"rows" yaml:"rows"`
}

// Default возвращает сетку 20x15 с клеткой 40px.
func Default() Grid {
	return Grid{CellSize: DefaultCellSize, Cols: DefaultCols, Rows: DefaultRows}
}

// Normalize подставляет значения по умолчанию вместо неположительных полей.
func (g Grid) Normalize() Grid {
	if g.CellSize <= 0 {
		g.CellSize = DefaultCellSize
	}
	if g.Cols <= 0 {
		g.Cols = DefaultCols
	}
	if g.Rows <= 0 {
		g.Rows = DefaultRows
	}
	return g
}

// ToPixels переводит координату в клетках в пиксели.
func (g Grid) ToPixels(n int) float64 {
	return float64(n * g.CellSize)
}

// ToGrid переводит пиксельную координату в номер клетки (floor).
// Отрицательные и выходящие за сетку значения допустимы.
func (g Grid) ToGrid(p float64) int {
	return int(math.Floor(p / float64(g.CellSize)))
}

func (g Grid) CanvasWidth() float64 {
	return g.ToPixels(g.Cols)
}

func (g Grid) CanvasHeight() float64 {
	return g.ToPixels(g.Rows)
}

// Canvas возвращает прямоугольник всего холста в пикселях.
func (g Grid) Canvas() Rect {
	return Rect{MinX: 0, MinY: 0, MaxX: g.CanvasWidth(), MaxY: g.CanvasHeight()}
}

// CellAt возвращает клетку, в которую попадает точка холста.
func (g Grid) CellAt(p Point) Cell {
	return Cell{X: g.ToGrid(p.X), Y: g.ToGrid(p.Y)}
}

// ClampCell прижимает клетку к границам [0, Cols-1] x [0, Rows-1].
func (g Grid) ClampCell(c Cell) Cell {
	return Cell{
		X: clampInt(c.X, 0, g.Cols-1),
		Y: clampInt(c.Y, 0, g.Rows-1),
	}
}

// ItemRect возвращает пиксельный прямоугольник элемента по его клеткам.
func (g Grid) ItemRect(pos Cell, size Size) Rect {
	return Rect{
		MinX: g.ToPixels(pos.X),
		MinY: g.ToPixels(pos.Y),
		MaxX: g.ToPixels(pos.X + size.W),
		MaxY: g.ToPixels(pos.Y + size.H),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
