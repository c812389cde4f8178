// Package viewport считает вписывание карты в контейнер и ведёт состояние
// панорамирования и масштабирования одного экземпляра просмотра.
package viewport

import (
	"math"
	"time"

	"yatramap/internal/mapview/grid"
	"yatramap/internal/yatra/models"
)

// ============================================================
// Viewport State
// ============================================================

const (
	MinZoomFactor = 0.5
	MaxZoomFactor = 4.0

	// ZoomStep - шаг кнопок приближения/отдаления.
	ZoomStep = 0.25

	// EaseDuration - длительность сглаживания для зума и сброса вида.
	EaseDuration = 150 * time.Millisecond
)

type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Viewport - состояние вида одной карты. Не потокобезопасен: владелец
// сериализует доступ сам.
type Viewport struct {
	grid      grid.Grid
	items     []models.Item
	bounds    grid.Rect
	container Container

	baseline float64
	scale    float64
	offset   grid.Point

	state  DragState
	anchor grid.Point
}

func New(g grid.Grid) *Viewport {
	return &Viewport{
		grid:     g,
		bounds:   g.Canvas(),
		baseline: 1,
		scale:    1,
	}
}

// SetContent заменяет список элементов, пересчитывает bounds и сбрасывает вид.
func (v *Viewport) SetContent(items []models.Item) {
	v.items = items
	v.bounds = ContentBounds(v.grid, items)
	v.Reset()
}

// Resize запоминает новый размер контейнера и заново вписывает содержимое.
// Неположительный размер игнорируется: остаются прежние контейнер,
// масштаб и смещение.
func (v *Viewport) Resize(c Container) {
	if !c.Valid() {
		return
	}
	v.container = c
	v.Reset()
}

// Reset вписывает и центрирует содержимое. Пока размер контейнера
// неизвестен, ничего не делает.
func (v *Viewport) Reset() {
	if !v.container.Valid() {
		return
	}
	scale, offset := Fit(v.grid, v.container, v.bounds)
	v.baseline = scale
	v.scale = scale
	v.offset = offset
}

// ============================================================
// Pointer Handling
// ============================================================

// PointerDown начинает перетаскивание вида. Если под указателем ларёк,
// перетаскивание не начинается и ларёк возвращается как клик.
func (v *Viewport) PointerDown(p grid.Point) (models.Stall, bool) {
	if stall, ok := v.HitTest(p); ok {
		return stall, true
	}
	v.state = Dragging
	v.anchor = p.Sub(v.offset)
	return models.Stall{}, false
}

// PointerMove сдвигает вид 1:1 за указателем. Вне перетаскивания игнорируется.
func (v *Viewport) PointerMove(p grid.Point) bool {
	if v.state != Dragging {
		return false
	}
	v.offset = p.Sub(v.anchor)
	return true
}

func (v *Viewport) PointerUp() {
	v.state = Idle
}

func (v *Viewport) PointerCancel() {
	v.state = Idle
}

// ============================================================
// Zoom
// ============================================================

// Zoom меняет масштаб на delta*baseline с ограничением
// [baseline*0.5, baseline*4] и сохраняет центр контейнера на месте.
func (v *Viewport) Zoom(delta float64) {
	old := v.scale
	next := clamp(old+delta*v.baseline, v.baseline*MinZoomFactor, v.baseline*MaxZoomFactor)
	if old <= 0 {
		v.scale = next
		return
	}

	ratio := next / old
	c := v.container.Center()
	v.offset = c.Sub(c.Sub(v.offset).Scale(ratio))
	v.scale = next
}

func (v *Viewport) ZoomIn()  { v.Zoom(ZoomStep) }
func (v *Viewport) ZoomOut() { v.Zoom(-ZoomStep) }

// ============================================================
// Accessors & Transforms
// ============================================================

func (v *Viewport) Scale() float64       { return v.scale }
func (v *Viewport) Baseline() float64    { return v.baseline }
func (v *Viewport) Offset() grid.Point   { return v.offset }
func (v *Viewport) State() DragState     { return v.state }
func (v *Viewport) Bounds() grid.Rect    { return v.bounds }
func (v *Viewport) Container() Container { return v.container }
func (v *Viewport) Grid() grid.Grid      { return v.grid }
func (v *Viewport) Items() []models.Item { return v.items }

// Transition - длительность CSS-перехода для текущего состояния:
// при перетаскивании без сглаживания.
func (v *Viewport) Transition() time.Duration {
	if v.state == Dragging {
		return 0
	}
	return EaseDuration
}

// CanvasToScreen переводит точку холста в экранные координаты.
func (v *Viewport) CanvasToScreen(p grid.Point) grid.Point {
	return p.Scale(v.scale).Add(v.offset)
}

func (v *Viewport) ScreenToCanvas(p grid.Point) grid.Point {
	if v.scale == 0 {
		return p.Sub(v.offset)
	}
	return p.Sub(v.offset).Scale(1 / v.scale)
}

// ScreenRect возвращает экранный прямоугольник элемента при текущем виде.
func (v *Viewport) ScreenRect(it models.Item) grid.Rect {
	p := it.Place()
	r := v.grid.ItemRect(p.Cell(), p.Size())
	lo := v.CanvasToScreen(r.Origin())
	hi := v.CanvasToScreen(grid.Point{X: r.MaxX, Y: r.MaxY})
	return grid.Rect{MinX: lo.X, MinY: lo.Y, MaxX: hi.X, MaxY: hi.Y}
}

// HitTest ищет ларёк под экранной точкой. Ларьки рисуются поверх дорог,
// последний в списке - сверху.
func (v *Viewport) HitTest(p grid.Point) (models.Stall, bool) {
	cp := v.ScreenToCanvas(p)
	for i := len(v.items) - 1; i >= 0; i-- {
		stall, ok := v.items[i].(models.Stall)
		if !ok {
			continue
		}
		if v.grid.ItemRect(stall.Cell(), stall.Size()).Contains(cp) {
			return stall, true
		}
	}
	return models.Stall{}, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
