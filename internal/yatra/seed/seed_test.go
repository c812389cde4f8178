package seed

import (
	"context"
	"errors"
	"testing"

	"yatramap/internal/yatra/models"
)

const sample = `
stalls:
  - id: chai
    number: 3
    name: Chai Corner
    x: 2
    y: 2
  - name: Books
    x: 6
    y: 2
    width: 3
    height: 2
    inactive: true
roads:
  - x: 0
    y: 5
    width: 20
welcome:
  - image_url: https://cdn.example/welcome.png
`

type memStore struct {
	items   []models.Item
	welcome []string
	calls   int
	fail    bool
}

func (m *memStore) InsertLayout(_ context.Context, layout *models.Layout, popups []models.WelcomePopup) (int, error) {
	m.calls++
	if m.fail {
		return 0, errors.New("disk full")
	}
	m.items = append(m.items, layout.Items()...)
	for _, p := range popups {
		m.welcome = append(m.welcome, p.ImageURL)
	}
	return layout.Len(), nil
}

func TestLayoutDefaults(t *testing.T) {
	f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	layout, err := f.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	chai, books := layout.Stalls[0], layout.Stalls[1]
	if chai.ID != "chai" || chai.Width != 2 || chai.Height != 1 || !chai.Active {
		t.Fatalf("chai = %+v", chai)
	}
	if books.ID == "" || books.Number != 4 || books.Active || books.Width != 3 {
		t.Fatalf("books = %+v", books)
	}
	if len(layout.Roads) != 1 || layout.Roads[0].Width != 20 || layout.Roads[0].Height != 1 {
		t.Fatalf("roads = %+v", layout.Roads)
	}
}

func TestLayoutRejectsNegative(t *testing.T) {
	f, err := Parse([]byte("roads:\n  - x: -1\n    y: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Layout(); !errors.Is(err, models.ErrInvalidPlacement) {
		t.Fatalf("err = %v", err)
	}
}

func TestApply(t *testing.T) {
	f, _ := Parse([]byte(sample))

	store := &memStore{}
	n, err := f.Apply(context.Background(), store)
	if err != nil || n != 3 {
		t.Fatalf("Apply = %d, %v", n, err)
	}
	if store.calls != 1 || store.items[0].ItemKind() != models.KindRoad || len(store.welcome) != 1 {
		t.Fatalf("store = %+v", store)
	}

	if _, err := f.Apply(context.Background(), &memStore{fail: true}); err == nil {
		t.Fatal("write failure not reported")
	}
}

func TestLayoutRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"stall number", "stalls:\n  - number: 2\n  - number: 2\n"},
		{"stall id", "stalls:\n  - id: a\n  - id: a\n"},
		{"road id", "roads:\n  - id: r\n  - id: r\n"},
		{"stall and road id", "stalls:\n  - id: x\nroads:\n  - id: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.Layout(); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("err = %v, want ErrDuplicate", err)
			}

			store := &memStore{}
			if _, err := f.Apply(context.Background(), store); !errors.Is(err, ErrDuplicate) {
				t.Fatalf("Apply err = %v", err)
			}
			if store.calls != 0 {
				t.Fatalf("store touched %d times", store.calls)
			}
		})
	}
}
