package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"yatramap/internal/yatra/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ============================================================
// Layout File
// ============================================================

var ErrDuplicate = errors.New("duplicate entry")

// File - YAML описание раскладки для первичного заполнения базы.
type File struct {
	Stalls  []StallEntry   `yaml:"stalls"`
	Roads   []RoadEntry    `yaml:"roads"`
	Welcome []WelcomeEntry `yaml:"welcome"`
}

type StallEntry struct {
	models.Placement `yaml:",inline"`

	ID          string   `yaml:"id"`
	Number      int      `yaml:"number"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Inactive    bool     `yaml:"inactive"`
	Images      []string `yaml:"images"`
}

type RoadEntry struct {
	models.Placement `yaml:",inline"`

	ID string `yaml:"id"`
}

type WelcomeEntry struct {
	ImageURL string `yaml:"image_url"`
	Inactive bool   `yaml:"inactive"`
}

// Store записывает раскладку целиком: либо всё, либо ничего.
type Store interface {
	InsertLayout(ctx context.Context, layout *models.Layout, popups []models.WelcomePopup) (int, error)
}

// Load читает и разбирает файл раскладки.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return &f, nil
}

// Layout проверяет записи и собирает раскладку. Пустые id заменяются uuid,
// номера ларьков без номера идут после максимального. Повтор id (среди
// ларьков и дорог вместе) или номера ларька - ошибка.
func (f *File) Layout() (*models.Layout, error) {
	next := 1
	for _, s := range f.Stalls {
		next = max(next, s.Number+1)
	}
	ids := make(map[string]string)
	numbers := make(map[int]int)

	layout := models.NewLayout(nil, nil)
	for i, e := range f.Stalls {
		s := models.Stall{
			ID:          e.ID,
			Number:      e.Number,
			Name:        e.Name,
			Category:    e.Category,
			Description: e.Description,
			Placement:   e.Placement,
			Active:      !e.Inactive,
			Images:      e.Images,
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.Number <= 0 {
			s.Number = next
			next++
		}
		s, err := s.Normalize()
		if err != nil {
			return nil, fmt.Errorf("stalls[%d]: %w", i, err)
		}
		if prev, ok := ids[s.ID]; ok {
			return nil, fmt.Errorf("stalls[%d]: %w: id %q already used by %s", i, ErrDuplicate, s.ID, prev)
		}
		if prev, ok := numbers[s.Number]; ok {
			return nil, fmt.Errorf("stalls[%d]: %w: number %d already used by stalls[%d]", i, ErrDuplicate, s.Number, prev)
		}
		ids[s.ID] = fmt.Sprintf("stalls[%d]", i)
		numbers[s.Number] = i
		layout.Stalls = append(layout.Stalls, s)
	}

	for i, e := range f.Roads {
		r := models.RoadSegment{ID: e.ID, Placement: e.Placement}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		r, err := r.Normalize()
		if err != nil {
			return nil, fmt.Errorf("roads[%d]: %w", i, err)
		}
		if prev, ok := ids[r.ID]; ok {
			return nil, fmt.Errorf("roads[%d]: %w: id %q already used by %s", i, ErrDuplicate, r.ID, prev)
		}
		ids[r.ID] = fmt.Sprintf("roads[%d]", i)
		layout.AddRoad(r)
	}
	return layout, nil
}

// Apply проверяет файл и записывает раскладку и попапы одной транзакцией.
// При ошибке в базе ничего не появляется.
func (f *File) Apply(ctx context.Context, store Store) (int, error) {
	layout, err := f.Layout()
	if err != nil {
		return 0, err
	}

	popups := make([]models.WelcomePopup, 0, len(f.Welcome))
	for _, w := range f.Welcome {
		popups = append(popups, models.WelcomePopup{ImageURL: w.ImageURL, Active: !w.Inactive})
	}

	n, err := store.InsertLayout(ctx, layout, popups)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	log.Printf("[SEED] inserted %d items, %d welcome popups", n, len(popups))
	return n, nil
}
