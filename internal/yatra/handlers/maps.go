package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"yatramap/internal/mapview/grid"
	"yatramap/internal/mapview/render"
	"yatramap/internal/mapview/viewport"
	"yatramap/internal/yatra/models"
	"yatramap/internal/yatra/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Map Handler
// ============================================================

const (
	defaultSVGWidth  = 800
	defaultSVGHeight = 600
)

type MapHandler struct {
	svc      *service.MapService
	renderer *render.Renderer
}

func NewMapHandler(svc *service.MapService, renderer *render.Renderer) *MapHandler {
	return &MapHandler{svc: svc, renderer: renderer}
}

type containerRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type pointerRequest struct {
	Event string  `json:"event"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type zoomRequest struct {
	Delta float64 `json:"delta"`
}

type pointerResponse struct {
	View    viewPayload   `json:"view"`
	Clicked *models.Stall `json:"clicked,omitempty"`
}

// GetMap отдаёт сетку, публичную раскладку и границы содержимого.
func (h *MapHandler) GetMap(c fiber.Ctx) error {
	layout := h.svc.LoadLayout(context.Background(), true)
	items := layout.Items()
	g := h.svc.Grid()

	return c.JSON(fiber.Map{
		"grid":   g,
		"bounds": viewport.ContentBounds(g, items),
		"items":  mapItems(items),
	})
}

// GetMapSVG рисует публичную карту, вписанную в width x height.
func (h *MapHandler) GetMapSVG(c fiber.Ctx) error {
	width, err := queryFloat(c, "width", defaultSVGWidth)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid width")
	}
	height, err := queryFloat(c, "height", defaultSVGHeight)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid height")
	}

	v := viewport.New(h.svc.Grid())
	v.Resize(viewport.Container{Width: width, Height: height})
	v.SetContent(h.svc.LoadLayout(context.Background(), true).Items())

	return h.sendSVG(c, v)
}

// ============================================================
// View instances
// ============================================================

// CreateView открывает экземпляр просмотра для контейнера заданного размера.
func (h *MapHandler) CreateView(c fiber.Ctx) error {
	var req containerRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}

	id, v := h.svc.OpenView(context.Background(), viewport.Container{Width: req.Width, Height: req.Height})
	log.Printf("[MAP] view %s opened (%gx%g)", id, req.Width, req.Height)
	return c.Status(http.StatusCreated).JSON(mapView(id, v))
}

func (h *MapHandler) GetView(c fiber.Ctx) error {
	return h.withView(c, nil)
}

// Pointer применяет событие указателя: down, move, up или cancel.
func (h *MapHandler) Pointer(c fiber.Ctx) error {
	var req pointerRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}

	id := c.Params("id")
	var resp pointerResponse
	err := h.svc.View(id, func(v *viewport.Viewport) error {
		p := grid.Point{X: req.X, Y: req.Y}
		switch req.Event {
		case "down":
			if stall, ok := v.PointerDown(p); ok {
				resp.Clicked = &stall
			}
		case "move":
			v.PointerMove(p)
		case "up":
			v.PointerUp()
		case "cancel":
			v.PointerCancel()
		default:
			return badRequest("unknown pointer event")
		}
		resp.View = mapView(id, v)
		return nil
	})
	if err != nil {
		return instanceError(c, err)
	}
	return c.JSON(resp)
}

// Zoom меняет масштаб; без delta используется шаг кнопки "+".
func (h *MapHandler) Zoom(c fiber.Ctx) error {
	req := zoomRequest{Delta: viewport.ZoomStep}
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	return h.withView(c, func(v *viewport.Viewport) error {
		v.Zoom(req.Delta)
		return nil
	})
}

func (h *MapHandler) Reset(c fiber.Ctx) error {
	return h.withView(c, func(v *viewport.Viewport) error {
		v.Reset()
		return nil
	})
}

func (h *MapHandler) Resize(c fiber.Ctx) error {
	var req containerRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	size := viewport.Container{Width: req.Width, Height: req.Height}
	if !size.Valid() {
		return errorJSON(c, http.StatusBadRequest, "width and height must be positive")
	}
	return h.withView(c, func(v *viewport.Viewport) error {
		v.Resize(size)
		return nil
	})
}

// ViewSVG рисует экземпляр просмотра с его текущим масштабом и смещением.
func (h *MapHandler) ViewSVG(c fiber.Ctx) error {
	var out string
	err := h.svc.View(c.Params("id"), func(v *viewport.Viewport) error {
		s, err := h.renderer.RenderString(v)
		if err != nil {
			return badRequest(err.Error())
		}
		out = s
		return nil
	})
	if err != nil {
		return instanceError(c, err)
	}
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(out)
}

func (h *MapHandler) DeleteView(c fiber.Ctx) error {
	if !h.svc.CloseView(c.Params("id")) {
		return errorJSON(c, http.StatusNotFound, "instance not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Helpers
// ============================================================

func (h *MapHandler) withView(c fiber.Ctx, fn func(v *viewport.Viewport) error) error {
	id := c.Params("id")
	var out viewPayload
	err := h.svc.View(id, func(v *viewport.Viewport) error {
		if fn != nil {
			if err := fn(v); err != nil {
				return err
			}
		}
		out = mapView(id, v)
		return nil
	})
	if err != nil {
		return instanceError(c, err)
	}
	return c.JSON(out)
}

func (h *MapHandler) sendSVG(c fiber.Ctx, v *viewport.Viewport) error {
	out, err := h.renderer.RenderString(v)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(out)
}

func queryFloat(c fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
