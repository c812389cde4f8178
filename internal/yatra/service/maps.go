package service

import (
	"context"
	"log"
	"time"

	"yatramap/internal/mapview/editor"
	"yatramap/internal/mapview/grid"
	"yatramap/internal/mapview/viewport"
	"yatramap/internal/yatra/models"
	"yatramap/internal/yatra/repository"
)

// ============================================================
// Map Service
// ============================================================

// ItemSource - чтение элементов из слоя данных.
type ItemSource interface {
	ListItems(ctx context.Context, kind models.Kind, filter repository.ListFilter) ([]models.Item, error)
}

type MapService struct {
	grid    grid.Grid
	source  ItemSource
	store   editor.Store
	opts    editor.Options
	views   *Registry[*viewport.Viewport]
	editors *Registry[*editor.Editor]
}

func NewMapService(g grid.Grid, source ItemSource, store editor.Store, opts editor.Options) *MapService {
	return &MapService{
		grid:    g,
		source:  source,
		store:   store,
		opts:    opts,
		views:   NewRegistry[*viewport.Viewport](),
		editors: NewRegistry[*editor.Editor](),
	}
}

func (s *MapService) Grid() grid.Grid {
	return s.grid
}

// LoadLayout загружает ларьки и дороги. Ошибка загрузки любого типа
// логируется и даёт пустой список этого типа, без повторов.
func (s *MapService) LoadLayout(ctx context.Context, activeOnly bool) *models.Layout {
	layout := models.NewLayout(nil, nil)

	stalls, err := s.source.ListItems(ctx, models.KindStall, repository.ListFilter{ActiveOnly: activeOnly})
	if err != nil {
		log.Printf("[MAP] fetch stalls failed: %v", err)
	}
	roads, err := s.source.ListItems(ctx, models.KindRoad, repository.ListFilter{})
	if err != nil {
		log.Printf("[MAP] fetch roads failed: %v", err)
	}

	for _, it := range append(stalls, roads...) {
		switch item := it.(type) {
		case models.Stall:
			layout.Stalls = append(layout.Stalls, item)
		case models.RoadSegment:
			layout.AddRoad(item)
		}
	}
	return layout
}

// ============================================================
// Views
// ============================================================

// OpenView создаёт экземпляр просмотра публичной карты (только активные
// ларьки) и вписывает его в контейнер.
func (s *MapService) OpenView(ctx context.Context, c viewport.Container) (string, *viewport.Viewport) {
	v := viewport.New(s.grid)
	v.Resize(c)
	v.SetContent(s.LoadLayout(ctx, true).Items())
	return s.views.Add(v), v
}

// View выполняет fn над экземпляром просмотра под его блокировкой.
func (s *MapService) View(id string, fn func(v *viewport.Viewport) error) error {
	return s.views.With(id, fn)
}

func (s *MapService) CloseView(id string) bool {
	_, ok := s.views.Remove(id)
	return ok
}

// ============================================================
// Editors
// ============================================================

// OpenEditor создаёт экземпляр редактора со всеми ларьками, включая неактивные.
func (s *MapService) OpenEditor(ctx context.Context) (string, *editor.Editor) {
	e := editor.New(s.grid, s.store, s.LoadLayout(ctx, false), s.opts)
	return s.editors.Add(e), e
}

func (s *MapService) Editor(id string, fn func(e *editor.Editor) error) error {
	return s.editors.With(id, fn)
}

// CloseEditor удаляет редактор; незавершённые записи доходят до хранилища сами.
func (s *MapService) CloseEditor(id string) bool {
	_, ok := s.editors.Remove(id)
	return ok
}

// ============================================================
// Sweeper
// ============================================================

// Sweep удаляет простаивающие экземпляры и возвращает их количество.
func (s *MapService) Sweep(maxIdle time.Duration) int {
	views := s.views.Sweep(maxIdle)
	editors := s.editors.Sweep(maxIdle)
	return len(views) + len(editors)
}

// RunSweeper периодически чистит реестр до отмены ctx.
// Неположительный interval отключает очистку.
func (s *MapService) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 {
		log.Printf("[MAP] sweeper disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				log.Printf("[MAP] swept %d idle instances", n)
			}
		}
	}
}
