package grid

// ============================================================
// Geometry primitives
// ============================================================

// Cell - позиция в клетках сетки.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size - размер в клетках.
type Size struct {
	W int `json:"width"`
	H int `json:"height"`
}

// Point - точка в пикселях (экран или холст).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Rect - прямоугольник в пикселях.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Contains проверяет попадание точки; правая и нижняя границы не включаются.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

func (r Rect) Origin() Point {
	return Point{X: r.MinX, Y: r.MinY}
}
