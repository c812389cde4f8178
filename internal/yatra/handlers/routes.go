package handlers

import (
	"yatramap/internal/common/middleware"
	"yatramap/internal/mapview/render"
	"yatramap/internal/yatra/repository"
	"yatramap/internal/yatra/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Routes
// ============================================================

type Deps struct {
	Repo     *repository.Repository
	Maps     *service.MapService
	Sessions *service.SessionManager
	Renderer *render.Renderer
}

// Register подключает health, docs и /api/v1 маршруты к приложению.
func Register(app *fiber.App, d Deps) {
	health := NewHealthHandler(d.Repo)
	maps := NewMapHandler(d.Maps, d.Renderer)
	editor := NewEditorHandler(d.Maps)
	stalls := NewStallHandler(d.Repo)
	session := NewSessionHandler(d.Repo, d.Sessions)
	admin := NewAdminHandler(d.Repo, d.Sessions)

	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)
	app.Get("/docs", DocsUI)
	app.Get("/docs/openapi.yaml", DocsSpec)

	api := app.Group("/api/v1")

	// Публичная карта
	api.Get("/map", maps.GetMap)
	api.Get("/map.svg", maps.GetMapSVG)
	api.Post("/map/views", maps.CreateView)
	api.Get("/map/views/:id", maps.GetView)
	api.Post("/map/views/:id/pointer", maps.Pointer)
	api.Post("/map/views/:id/zoom", maps.Zoom)
	api.Post("/map/views/:id/reset", maps.Reset)
	api.Post("/map/views/:id/resize", maps.Resize)
	api.Get("/map/views/:id/svg", maps.ViewSVG)
	api.Delete("/map/views/:id", maps.DeleteView)

	api.Get("/stalls", stalls.List)
	api.Get("/stalls/:id", stalls.Get)

	api.Post("/session", session.Start)
	api.Get("/session/welcome", session.Welcome)
	api.Post("/session/welcome/dismiss", session.Dismiss)

	// Админка
	api.Post("/admin/login", admin.Login)

	protected := api.Group("/admin/editor", middleware.RequireAdmin(d.Sessions))
	protected.Post("", editor.Open)
	protected.Get("/:id", editor.Get)
	protected.Post("/:id/drag", editor.Drag)
	protected.Post("/:id/drop", editor.Drop)
	protected.Post("/:id/resize", editor.Resize)
	protected.Post("/:id/add-mode", editor.ToggleAddMode)
	protected.Post("/:id/click", editor.Click)
	protected.Delete("/:id/items/:itemId", editor.DeleteItem)
	protected.Delete("/:id", editor.Close)
}
