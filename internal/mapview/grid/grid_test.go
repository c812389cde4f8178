package grid

import "testing"

func TestToGridRoundTrip(t *testing.T) {
	g := Default()
	for n := 0; n <= 500; n++ {
		if got := g.ToGrid(g.ToPixels(n)); got != n {
			t.Fatalf("ToGrid(ToPixels(%d)) = %d", n, got)
		}
	}
}

func TestToGridFloor(t *testing.T) {
	g := Default()
	tests := []struct {
		px   float64
		want int
	}{
		{0, 0},
		{39.9, 0},
		{40, 1},
		{79, 1},
		{-1, -1},
		{-40, -1},
		{-40.5, -2},
		{1000, 25},
	}
	for _, tt := range tests {
		if got := g.ToGrid(tt.px); got != tt.want {
			t.Errorf("ToGrid(%v) = %d, want %d", tt.px, got, tt.want)
		}
	}
}

func TestCanvasExtent(t *testing.T) {
	g := Default()
	if g.CanvasWidth() != 800 || g.CanvasHeight() != 600 {
		t.Fatalf("canvas = %vx%v, want 800x600", g.CanvasWidth(), g.CanvasHeight())
	}
	c := g.Canvas()
	if c.Width() != 800 || c.Height() != 600 {
		t.Fatalf("canvas rect = %+v", c)
	}
}

func TestClampCell(t *testing.T) {
	g := Default()
	tests := []struct {
		in, want Cell
	}{
		{Cell{5, 5}, Cell{5, 5}},
		{Cell{-3, 2}, Cell{0, 2}},
		{Cell{25, -1}, Cell{19, 0}},
		{Cell{19, 14}, Cell{19, 14}},
		{Cell{100, 100}, Cell{19, 14}},
	}
	for _, tt := range tests {
		if got := g.ClampCell(tt.in); got != tt.want {
			t.Errorf("ClampCell(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestItemRect(t *testing.T) {
	g := Default()
	r := g.ItemRect(Cell{2, 2}, Size{2, 1})
	want := Rect{MinX: 80, MinY: 80, MaxX: 160, MaxY: 120}
	if r != want {
		t.Fatalf("ItemRect = %+v, want %+v", r, want)
	}
	if !r.Contains(Point{80, 80}) || r.Contains(Point{160, 100}) {
		t.Fatalf("Contains edges wrong for %+v", r)
	}
}

func TestNormalize(t *testing.T) {
	g := Grid{}.Normalize()
	if g != Default() {
		t.Fatalf("Normalize() = %+v", g)
	}
	custom := Grid{CellSize: 20, Cols: 10, Rows: 0}.Normalize()
	if custom.CellSize != 20 || custom.Cols != 10 || custom.Rows != DefaultRows {
		t.Fatalf("Normalize() = %+v", custom)
	}
}
