package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"yatramap/internal/yatra/models"

	"github.com/google/uuid"
)

// ============================================================
// Item Queries
// ============================================================

// ListFilter сужает выборку ларьков.
type ListFilter struct {
	ActiveOnly bool
}

const stallColumns = `id, stall_number, name, category, description, x, y, width, height, is_active, images, created_at`

// ListItems возвращает элементы одного типа в виде общего интерфейса.
func (r *Repository) ListItems(ctx context.Context, kind models.Kind, filter ListFilter) ([]models.Item, error) {
	switch kind {
	case models.KindStall:
		stalls, err := r.ListStalls(ctx, filter)
		if err != nil {
			return nil, err
		}
		items := make([]models.Item, 0, len(stalls))
		for _, s := range stalls {
			items = append(items, s)
		}
		return items, nil
	case models.KindRoad:
		roads, err := r.ListRoads(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]models.Item, 0, len(roads))
		for _, rd := range roads {
			items = append(items, rd)
		}
		return items, nil
	}
	return nil, fmt.Errorf("list: unknown kind %q", kind)
}

// ListStalls возвращает ларьки по возрастанию номера. Некорректные записи
// пропускаются с записью в лог.
func (r *Repository) ListStalls(ctx context.Context, filter ListFilter) ([]models.Stall, error) {
	query := `SELECT ` + stallColumns + ` FROM stalls`
	if filter.ActiveOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY stall_number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stalls: %w", err)
	}
	defer rows.Close()

	stalls := []models.Stall{}
	for rows.Next() {
		s, err := scanStall(rows)
		if err != nil {
			return nil, err
		}
		s, err = s.Normalize()
		if err != nil {
			log.Printf("[REPO] skip stall %s: %v", s.ID, err)
			continue
		}
		stalls = append(stalls, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stalls: %w", err)
	}
	return stalls, nil
}

func (r *Repository) GetStall(ctx context.Context, id string) (*models.Stall, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+stallColumns+` FROM stalls WHERE id = ?`, id)
	s, err := scanStall(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s, err = s.Normalize()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListRoads возвращает дороги. Элементы других типов пропускаются.
func (r *Repository) ListRoads(ctx context.Context) ([]models.RoadSegment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, x, y, width, height FROM map_elements ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query map elements: %w", err)
	}
	defer rows.Close()

	roads := []models.RoadSegment{}
	for rows.Next() {
		var rd models.RoadSegment
		var elemType string
		if err := rows.Scan(&rd.ID, &elemType, &rd.X, &rd.Y, &rd.Width, &rd.Height); err != nil {
			return nil, fmt.Errorf("scan map element: %w", err)
		}
		if models.Kind(elemType) != models.KindRoad {
			log.Printf("[REPO] skip map element %s: unsupported type %q", rd.ID, elemType)
			continue
		}
		rd, err = rd.Normalize()
		if err != nil {
			log.Printf("[REPO] skip map element %s: %v", rd.ID, err)
			continue
		}
		roads = append(roads, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate map elements: %w", err)
	}
	return roads, nil
}

// ============================================================
// Item Mutations
// ============================================================

func (r *Repository) UpdateItemPosition(ctx context.Context, kind models.Kind, id string, x, y int) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET x = ?, y = ? WHERE id = ?`, x, y, id)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return expectOne(res)
}

func (r *Repository) UpdateItemSize(ctx context.Context, kind models.Kind, id string, width, height int) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET width = ?, height = ? WHERE id = ?`, width, height, id)
	if err != nil {
		return fmt.Errorf("update size: %w", err)
	}
	return expectOne(res)
}

// CreateItem создаёт элемент с новым id. Ларьки получают следующий свободный номер.
func (r *Repository) CreateItem(ctx context.Context, kind models.Kind, x, y, width, height int) (models.Item, error) {
	p := models.Placement{X: x, Y: y, Width: width, Height: height}
	var item models.Item
	switch kind {
	case models.KindStall:
		number, err := r.nextStallNumber(ctx)
		if err != nil {
			return nil, err
		}
		s, err := models.Stall{ID: uuid.NewString(), Number: number, Placement: p, Active: true}.Normalize()
		if err != nil {
			return nil, err
		}
		item = s
	case models.KindRoad:
		rd, err := models.RoadSegment{ID: uuid.NewString(), Placement: p}.Normalize()
		if err != nil {
			return nil, err
		}
		item = rd
	default:
		return nil, fmt.Errorf("create: unknown kind %q", kind)
	}

	if err := r.InsertItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// execer - общий метод *sql.DB и *sql.Tx для вставок.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertItem записывает элемент как есть, с его id и номером.
func (r *Repository) InsertItem(ctx context.Context, item models.Item) error {
	return insertItem(ctx, r.db, item)
}

// InsertLayout записывает всю раскладку и попапы одной транзакцией.
// При любой ошибке база остаётся без изменений.
func (r *Repository) InsertLayout(ctx context.Context, layout *models.Layout, popups []models.WelcomePopup) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("[REPO] rollback failed: %v", rbErr)
			}
		}
	}()

	n := 0
	for _, it := range layout.Items() {
		if err := insertItem(ctx, tx, it); err != nil {
			return 0, fmt.Errorf("insert %s %s: %w", it.ItemKind(), it.ItemID(), err)
		}
		n++
	}
	for _, p := range popups {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if err := insertWelcomePopup(ctx, tx, p); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return n, nil
}

func insertItem(ctx context.Context, ex execer, item models.Item) error {
	switch it := item.(type) {
	case models.Stall:
		if it.Images == nil {
			it.Images = []string{}
		}
		images, err := json.Marshal(it.Images)
		if err != nil {
			return fmt.Errorf("encode images: %w", err)
		}
		_, err = ex.ExecContext(ctx, `
            INSERT INTO stalls (id, stall_number, name, category, description, x, y, width, height, is_active, images)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        `, it.ID, it.Number, it.Name, nullString(it.Category), nullString(it.Description),
			it.X, it.Y, it.Width, it.Height, it.Active, string(images))
		if err != nil {
			return fmt.Errorf("insert stall: %w", err)
		}
		return nil
	case models.RoadSegment:
		_, err := ex.ExecContext(ctx, `
            INSERT INTO map_elements (id, type, x, y, width, height)
            VALUES (?, ?, ?, ?, ?, ?)
        `, it.ID, string(models.KindRoad), it.X, it.Y, it.Width, it.Height)
		if err != nil {
			return fmt.Errorf("insert road: %w", err)
		}
		return nil
	}
	return fmt.Errorf("insert: unsupported item %T", item)
}

func (r *Repository) DeleteItem(ctx context.Context, kind models.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return expectOne(res)
}

// ============================================================
// Helpers
// ============================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanStall(row scanner) (models.Stall, error) {
	var (
		s                     models.Stall
		category, description sql.NullString
		width, height         sql.NullInt64
		images                string
	)
	err := row.Scan(&s.ID, &s.Number, &s.Name, &category, &description,
		&s.X, &s.Y, &width, &height, &s.Active, &images, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("scan stall: %w", err)
	}

	s.Category = category.String
	s.Description = description.String
	s.Width = int(width.Int64)
	s.Height = int(height.Int64)
	if images != "" {
		if err := json.Unmarshal([]byte(images), &s.Images); err != nil {
			log.Printf("[REPO] stall %s: bad images column: %v", s.ID, err)
		}
	}
	return s, nil
}

func (r *Repository) nextStallNumber(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(stall_number), 0) + 1 FROM stalls`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next stall number: %w", err)
	}
	return n, nil
}

func tableFor(kind models.Kind) (string, error) {
	switch kind {
	case models.KindStall:
		return "stalls", nil
	case models.KindRoad:
		return "map_elements", nil
	}
	return "", fmt.Errorf("unknown kind %q", kind)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
