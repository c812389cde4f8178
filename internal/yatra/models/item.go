package models

import (
	"errors"
	"fmt"
	"strconv"

	"yatramap/internal/mapview/grid"
)

// ============================================================
// Placed Items
// ============================================================

type Kind string

const (
	KindStall Kind = "stall"
	KindRoad  Kind = "road"
)

const (
	DefaultStallWidth  = 2
	DefaultStallHeight = 1
)

var ErrInvalidPlacement = errors.New("invalid placement")

// ParseKind разбирает тип элемента из запроса или файла.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStall, KindRoad:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Placement - позиция и размер элемента в клетках.
type Placement struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (p Placement) Cell() grid.Cell {
	return grid.Cell{X: p.X, Y: p.Y}
}

func (p Placement) Size() grid.Size {
	return grid.Size{W: p.Width, H: p.Height}
}

// normalize подставляет размер по умолчанию и отбрасывает отрицательные позиции.
func (p Placement) normalize(defW, defH int) (Placement, error) {
	if p.X < 0 || p.Y < 0 {
		return p, fmt.Errorf("%w: position (%d,%d)", ErrInvalidPlacement, p.X, p.Y)
	}
	if p.Width <= 0 {
		p.Width = defW
	}
	if p.Height <= 0 {
		p.Height = defH
	}
	return p, nil
}

// Item - общий интерфейс ларька и дороги. Реализуется только типами этого пакета.
type Item interface {
	ItemID() string
	ItemKind() Kind
	Place() Placement
	isItem()
}

// ============================================================
// Stall
// ============================================================

type Stall struct {
	ID          string `json:"id"`
	Number      int    `json:"stall_number"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Placement
	Active    bool     `json:"is_active"`
	Images    []string `json:"images"`
	CreatedAt string   `json:"created_at,omitempty"`
}

func (s Stall) ItemID() string   { return s.ID }
func (s Stall) ItemKind() Kind   { return KindStall }
func (s Stall) Place() Placement { return s.Placement }
func (Stall) isItem()            {}

// Label - подпись на карте.
func (s Stall) Label() string {
	return strconv.Itoa(s.Number)
}

// Normalize проверяет запись ларька на границе доступа к данным.
func (s Stall) Normalize() (Stall, error) {
	p, err := s.Placement.normalize(DefaultStallWidth, DefaultStallHeight)
	if err != nil {
		return s, fmt.Errorf("stall %d: %w", s.Number, err)
	}
	s.Placement = p
	if s.Images == nil {
		s.Images = []string{}
	}
	return s, nil
}

// ============================================================
// Road Segment
// ============================================================

type RoadSegment struct {
	ID string `json:"id"`
	Placement
}

func (r RoadSegment) ItemID() string   { return r.ID }
func (r RoadSegment) ItemKind() Kind   { return KindRoad }
func (r RoadSegment) Place() Placement { return r.Placement }
func (RoadSegment) isItem()            {}

func (r RoadSegment) Normalize() (RoadSegment, error) {
	p, err := r.Placement.normalize(1, 1)
	if err != nil {
		return r, fmt.Errorf("road %s: %w", r.ID, err)
	}
	r.Placement = p
	return r, nil
}
