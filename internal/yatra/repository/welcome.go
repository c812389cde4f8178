package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"yatramap/internal/yatra/models"

	"github.com/google/uuid"
)

// ============================================================
// Welcome Popup
// ============================================================

// ActiveWelcomePopup возвращает самый свежий активный попап.
func (r *Repository) ActiveWelcomePopup(ctx context.Context) (*models.WelcomePopup, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, image_url, is_active, created_at
        FROM welcome_popup
        WHERE is_active = 1
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1
    `)

	var p models.WelcomePopup
	if err := row.Scan(&p.ID, &p.ImageURL, &p.Active, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan welcome popup: %w", err)
	}
	return &p, nil
}

func (r *Repository) CreateWelcomePopup(ctx context.Context, imageURL string, active bool) (*models.WelcomePopup, error) {
	p := models.WelcomePopup{ID: uuid.NewString(), ImageURL: imageURL, Active: active}
	if err := insertWelcomePopup(ctx, r.db, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func insertWelcomePopup(ctx context.Context, ex execer, p models.WelcomePopup) error {
	_, err := ex.ExecContext(ctx, `
        INSERT INTO welcome_popup (id, image_url, is_active)
        VALUES (?, ?, ?)
    `, p.ID, p.ImageURL, p.Active)
	if err != nil {
		return fmt.Errorf("insert welcome popup: %w", err)
	}
	return nil
}
