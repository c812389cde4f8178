package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"yatramap/internal/common/config"
	"yatramap/internal/common/middleware"
	"yatramap/internal/mapview/editor"
	"yatramap/internal/mapview/render"
	"yatramap/internal/yatra/handlers"
	"yatramap/internal/yatra/models"
	"yatramap/internal/yatra/repository"
	"yatramap/internal/yatra/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// YatraMap Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.AdminLogin, cfg.AdminPassword); err != nil {
		log.Fatalf("init db: %v", err)
	}

	maps := service.NewMapService(cfg.Grid, repo, repo, editor.Options{
		WriteTimeout: cfg.EditorWriteTimeout,
		OnWriteError: func(op string, item models.Item, err error) {
			log.Printf("[MAP] %s %s %s not persisted, local state kept", op, item.ItemKind(), item.ItemID())
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go maps.RunSweeper(ctx, cfg.SweepInterval, cfg.ViewIdleTTL)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "YatraMap",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	if cfg.CORS {
		app.Use(middleware.CORS())
	}

	// ============================================================
	// Routes
	// ============================================================

	handlers.Register(app, handlers.Deps{
		Repo:     repo,
		Maps:     maps,
		Sessions: service.NewSessionManager(),
		Renderer: render.NewRenderer(render.DefaultStyle()),
	})

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting YatraMap on %s (env: %s, db: %s, grid: %dx%d@%dpx)",
		addr, cfg.Environment, cfg.DBPath, cfg.Grid.Cols, cfg.Grid.Rows, cfg.Grid.CellSize)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
