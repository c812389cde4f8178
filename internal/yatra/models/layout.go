package models

import "yatramap/internal/mapview/grid"

// ============================================================
// Layout
// ============================================================

// Layout - список элементов одной карты. Владелец - экземпляр просмотра
// или редактора, между экземплярами не разделяется.
type Layout struct {
	Stalls []Stall       `json:"stalls"`
	Roads  []RoadSegment `json:"roads"`
}

func NewLayout(stalls []Stall, roads []RoadSegment) *Layout {
	if stalls == nil {
		stalls = []Stall{}
	}
	if roads == nil {
		roads = []RoadSegment{}
	}
	return &Layout{Stalls: stalls, Roads: roads}
}

func (l *Layout) Len() int {
	return len(l.Stalls) + len(l.Roads)
}

// Items возвращает все элементы в порядке отрисовки: сначала дороги, потом ларьки.
func (l *Layout) Items() []Item {
	out := make([]Item, 0, l.Len())
	for _, r := range l.Roads {
		out = append(out, r)
	}
	for _, s := range l.Stalls {
		out = append(out, s)
	}
	return out
}

func (l *Layout) Find(id string) (Item, bool) {
	if i := l.stallIndex(id); i >= 0 {
		return l.Stalls[i], true
	}
	if i := l.roadIndex(id); i >= 0 {
		return l.Roads[i], true
	}
	return nil, false
}

func (l *Layout) Stall(id string) (Stall, bool) {
	if i := l.stallIndex(id); i >= 0 {
		return l.Stalls[i], true
	}
	return Stall{}, false
}

// Move меняет позицию элемента. Возвращает false, если элемента нет.
func (l *Layout) Move(id string, c grid.Cell) bool {
	if i := l.stallIndex(id); i >= 0 {
		l.Stalls[i].X, l.Stalls[i].Y = c.X, c.Y
		return true
	}
	if i := l.roadIndex(id); i >= 0 {
		l.Roads[i].X, l.Roads[i].Y = c.X, c.Y
		return true
	}
	return false
}

func (l *Layout) Resize(id string, s grid.Size) bool {
	if i := l.stallIndex(id); i >= 0 {
		l.Stalls[i].Width, l.Stalls[i].Height = s.W, s.H
		return true
	}
	if i := l.roadIndex(id); i >= 0 {
		l.Roads[i].Width, l.Roads[i].Height = s.W, s.H
		return true
	}
	return false
}

func (l *Layout) AddRoad(r RoadSegment) {
	l.Roads = append(l.Roads, r)
}

// Remove удаляет элемент и возвращает его.
func (l *Layout) Remove(id string) (Item, bool) {
	if i := l.stallIndex(id); i >= 0 {
		s := l.Stalls[i]
		l.Stalls = append(l.Stalls[:i], l.Stalls[i+1:]...)
		return s, true
	}
	if i := l.roadIndex(id); i >= 0 {
		r := l.Roads[i]
		l.Roads = append(l.Roads[:i], l.Roads[i+1:]...)
		return r, true
	}
	return nil, false
}

// Clone делает глубокую копию для отдачи наружу.
func (l *Layout) Clone() *Layout {
	stalls := make([]Stall, len(l.Stalls))
	for i, s := range l.Stalls {
		s.Images = append([]string(nil), s.Images...)
		stalls[i] = s
	}
	roads := append([]RoadSegment(nil), l.Roads...)
	return NewLayout(stalls, roads)
}

func (l *Layout) stallIndex(id string) int {
	for i := range l.Stalls {
		if l.Stalls[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Layout) roadIndex(id string) int {
	for i := range l.Roads {
		if l.Roads[i].ID == id {
			return i
		}
	}
	return -1
}
