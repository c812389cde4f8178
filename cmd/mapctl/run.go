package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"yatramap/internal/common/config"
	"yatramap/internal/mapview/editor"
	"yatramap/internal/mapview/render"
	"yatramap/internal/mapview/viewport"
	"yatramap/internal/yatra/repository"
	"yatramap/internal/yatra/seed"
	"yatramap/internal/yatra/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// env - открытая база и сервис карты для одной команды.
type env struct {
	repo *repository.Repository
	maps *service.MapService
	done func()
}

// open открывает базу, применяет миграции и собирает сервис карты
// с сеткой из конфигурации.
func open(ctx context.Context, dbPath string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := repository.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	repo := repository.New(db)
	if err := repo.Init(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		db.Close()
		return nil, err
	}
	return &env{
		repo: repo,
		maps: service.NewMapService(cfg.Grid, repo, repo, editor.Options{}),
		done: func() { db.Close() },
	}, nil
}

func runSeed(ctx context.Context, dbPath, layoutPath string) error {
	f, err := seed.Load(layoutPath)
	if err != nil {
		return err
	}
	e, err := open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer e.done()

	n, err := f.Apply(ctx, e.repo)
	if err != nil {
		return err
	}
	log.Printf("seeded %d items into %s", n, dbPath)
	return nil
}

func runBounds(ctx context.Context, w io.Writer, dbPath string, activeOnly bool) error {
	e, err := open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer e.done()

	svc := e.maps
	items := svc.LoadLayout(ctx, activeOnly).Items()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"grid":   svc.Grid(),
		"items":  len(items),
		"bounds": viewport.ContentBounds(svc.Grid(), items),
	})
}

func runRender(ctx context.Context, w io.Writer, dbPath string, width, height float64, out string) error {
	c := viewport.Container{Width: width, Height: height}
	if !c.Valid() {
		return fmt.Errorf("width and height must be positive")
	}

	e, err := open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer e.done()

	svc := e.maps
	v := viewport.New(svc.Grid())
	v.Resize(c)
	v.SetContent(svc.LoadLayout(ctx, true).Items())

	if out != "" {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer file.Close()
		w = file
	}
	return render.NewRenderer(render.DefaultStyle()).Render(w, v)
}
