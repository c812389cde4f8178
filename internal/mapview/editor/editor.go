// Package editor реализует перестановку, изменение размера, добавление и
// удаление элементов карты с привязкой к сетке.
package editor

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"yatramap/internal/mapview/grid"
	"yatramap/internal/yatra/models"

	"github.com/google/uuid"
)

// ============================================================
// Editor
// ============================================================

const (
	MinStallWidth  = 1
	MaxStallWidth  = 5
	MinStallHeight = 1
	MaxStallHeight = 3

	DefaultWriteTimeout = 5 * time.Second
)

// Store - запись изменений во внешний слой данных.
type Store interface {
	UpdateItemPosition(ctx context.Context, kind models.Kind, id string, x, y int) error
	UpdateItemSize(ctx context.Context, kind models.Kind, id string, width, height int) error
	InsertItem(ctx context.Context, item models.Item) error
	DeleteItem(ctx context.Context, kind models.Kind, id string) error
}

type Mode int

const (
	ModeMove Mode = iota
	ModeAddRoad
)

func (m Mode) String() string {
	if m == ModeAddRoad {
		return "add_road"
	}
	return "move"
}

// Options - необязательные настройки редактора.
type Options struct {
	WriteTimeout time.Duration
	// OnWriteError вызывается из горутины записи после логирования ошибки.
	OnWriteError func(op string, item models.Item, err error)
	NewID        func() string
}

type capture struct {
	id     string
	offset grid.Point
}

// Editor держит локальную раскладку и применяет изменения оптимистично:
// локальное состояние меняется сразу, запись в Store идёт в фоне и при
// ошибке не откатывается. Методы изменения состояния не потокобезопасны.
type Editor struct {
	grid   grid.Grid
	store  Store
	layout *models.Layout
	opts   Options

	captured *capture
	mode     Mode

	writes   sync.WaitGroup
	pending  atomic.Int64
	failures atomic.Int64
}

func New(g grid.Grid, store Store, layout *models.Layout, opts Options) *Editor {
	if layout == nil {
		layout = models.NewLayout(nil, nil)
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Editor{
		grid:   g,
		store:  store,
		layout: layout,
		opts:   opts,
	}
}

func (e *Editor) Grid() grid.Grid {
	return e.grid
}

// Layout возвращает текущее локальное состояние (не копию).
func (e *Editor) Layout() *models.Layout {
	return e.layout
}

func (e *Editor) Mode() Mode {
	return e.mode
}

// Captured возвращает id захваченного элемента.
func (e *Editor) Captured() (string, bool) {
	if e.captured == nil {
		return "", false
	}
	return e.captured.id, true
}

// ============================================================
// Drag & Drop
// ============================================================

// BeginDrag захватывает элемент и запоминает смещение указателя внутри
// его прямоугольника. pointer - координаты холста в пикселях.
func (e *Editor) BeginDrag(id string, pointer grid.Point) bool {
	it, ok := e.layout.Find(id)
	if !ok {
		return false
	}
	p := it.Place()
	box := e.grid.ItemRect(p.Cell(), p.Size())
	e.captured = &capture{id: id, offset: pointer.Sub(box.Origin())}
	return true
}

// CancelDrag отпускает элемент без изменений.
func (e *Editor) CancelDrag() {
	e.captured = nil
}

// Drop ставит захваченный элемент в клетку под pointer с учётом смещения,
// прижимая к границам сетки. Без захваченного элемента ничего не делает.
func (e *Editor) Drop(pointer grid.Point) (grid.Cell, bool) {
	if e.captured == nil {
		return grid.Cell{}, false
	}
	c := e.captured
	e.captured = nil

	cell := e.grid.ClampCell(e.grid.CellAt(pointer.Sub(c.offset)))
	if !e.layout.Move(c.id, cell) {
		return grid.Cell{}, false
	}

	it, _ := e.layout.Find(c.id)
	e.persist("move", it, func(ctx context.Context) error {
		return e.store.UpdateItemPosition(ctx, it.ItemKind(), it.ItemID(), cell.X, cell.Y)
	})
	return cell, true
}

// ============================================================
// Resize
// ============================================================

// Resize меняет размер ларька на (dw, dh) с ограничением ширины [1,5]
// и высоты [1,3]. Ограничение применяется только к изменяемой оси.
// Дороги и неизвестные элементы не меняются.
func (e *Editor) Resize(id string, dw, dh int) (grid.Size, bool) {
	stall, ok := e.layout.Stall(id)
	if !ok {
		return grid.Size{}, false
	}
	size := stall.Size()
	if dw != 0 {
		size.W = clampInt(size.W+dw, MinStallWidth, MaxStallWidth)
	}
	if dh != 0 {
		size.H = clampInt(size.H+dh, MinStallHeight, MaxStallHeight)
	}
	if size == stall.Size() {
		return size, true
	}
	e.layout.Resize(id, size)

	stall, _ = e.layout.Stall(id)
	e.persist("resize", stall, func(ctx context.Context) error {
		return e.store.UpdateItemSize(ctx, models.KindStall, id, size.W, size.H)
	})
	return size, true
}

// ============================================================
// Road Placement & Delete
// ============================================================

// ToggleAddRoad переключает режим добавления дорог и возвращает новый режим.
func (e *Editor) ToggleAddRoad() Mode {
	if e.mode == ModeAddRoad {
		e.mode = ModeMove
	} else {
		e.mode = ModeAddRoad
	}
	return e.mode
}

// Click обрабатывает клик по холсту. В режиме добавления создаёт дорогу 1x1
// в клетке под указателем.
func (e *Editor) Click(pointer grid.Point) (models.RoadSegment, bool) {
	if e.mode != ModeAddRoad {
		return models.RoadSegment{}, false
	}
	cell := e.grid.ClampCell(e.grid.CellAt(pointer))
	road := models.RoadSegment{
		ID:        e.opts.NewID(),
		Placement: models.Placement{X: cell.X, Y: cell.Y, Width: 1, Height: 1},
	}
	e.layout.AddRoad(road)

	e.persist("create", road, func(ctx context.Context) error {
		return e.store.InsertItem(ctx, road)
	})
	return road, true
}

// Delete сразу удаляет элемент. Подтверждение - забота интерфейса.
func (e *Editor) Delete(id string) bool {
	it, ok := e.layout.Remove(id)
	if !ok {
		return false
	}
	if e.captured != nil && e.captured.id == id {
		e.captured = nil
	}
	e.persist("delete", it, func(ctx context.Context) error {
		return e.store.DeleteItem(ctx, it.ItemKind(), it.ItemID())
	})
	return true
}

// ============================================================
// Background Writes
// ============================================================

// Pending - число записей, ещё не дошедших до Store.
func (e *Editor) Pending() int {
	return int(e.pending.Load())
}

// Failures - число записей, завершившихся ошибкой. Локальное состояние
// для них уже расходится с хранилищем.
func (e *Editor) Failures() int {
	return int(e.failures.Load())
}

// Wait ждёт завершения всех фоновых записей.
func (e *Editor) Wait() {
	e.writes.Wait()
}

func (e *Editor) persist(op string, it models.Item, write func(ctx context.Context) error) {
	if e.store == nil {
		return
	}
	e.pending.Add(1)
	e.writes.Add(1)
	go func() {
		defer e.writes.Done()
		defer e.pending.Add(-1)

		ctx, cancel := context.WithTimeout(context.Background(), e.opts.WriteTimeout)
		defer cancel()

		if err := write(ctx); err != nil {
			e.failures.Add(1)
			log.Printf("[EDITOR] %s %s %s failed: %v", op, it.ItemKind(), it.ItemID(), err)
			if e.opts.OnWriteError != nil {
				e.opts.OnWriteError(op, it, err)
			}
		}
	}()
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
