package handlers

import (
	"context"
	"log"
	"net/http"

	"yatramap/internal/common/middleware"
	"yatramap/internal/mapview/editor"
	"yatramap/internal/mapview/grid"
	"yatramap/internal/yatra/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Handler
// ============================================================

// EditorHandler - админский редактор раскладки. Координаты указателя
// передаются в пикселях холста.
type EditorHandler struct {
	svc *service.MapService
}

func NewEditorHandler(svc *service.MapService) *EditorHandler {
	return &EditorHandler{svc: svc}
}

type dragRequest struct {
	ItemID string  `json:"item_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type resizeRequest struct {
	ItemID string `json:"item_id"`
	DW     int    `json:"dw"`
	DH     int    `json:"dh"`
}

// Open создаёт экземпляр редактора со всей раскладкой.
func (h *EditorHandler) Open(c fiber.Ctx) error {
	id, e := h.svc.OpenEditor(context.Background())
	adminID, _ := c.Locals(middleware.AdminIDKey).(string)
	log.Printf("[EDITOR] editor %s opened by %s", id, adminID)
	return c.Status(http.StatusCreated).JSON(mapEditor(id, e))
}

func (h *EditorHandler) Get(c fiber.Ctx) error {
	return h.withEditor(c, nil)
}

// Drag захватывает элемент под указателем.
func (h *EditorHandler) Drag(c fiber.Ctx) error {
	var req dragRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	if req.ItemID == "" {
		return errorJSON(c, http.StatusBadRequest, "item_id required")
	}
	return h.withEditor(c, func(e *editor.Editor) error {
		if !e.BeginDrag(req.ItemID, grid.Point{X: req.X, Y: req.Y}) {
			return notFound("item not found")
		}
		return nil
	})
}

// Drop отпускает захваченный элемент. Без захвата ничего не меняется.
func (h *EditorHandler) Drop(c fiber.Ctx) error {
	var req dragRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	return h.withEditor(c, func(e *editor.Editor) error {
		e.Drop(grid.Point{X: req.X, Y: req.Y})
		return nil
	})
}

// Resize меняет размер ларька. Для дороги отвечает 400.
func (h *EditorHandler) Resize(c fiber.Ctx) error {
	var req resizeRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	return h.withEditor(c, func(e *editor.Editor) error {
		if _, ok := e.Resize(req.ItemID, req.DW, req.DH); !ok {
			if _, found := e.Layout().Find(req.ItemID); found {
				return badRequest("only stalls can be resized")
			}
			return notFound("item not found")
		}
		return nil
	})
}

// ToggleAddMode переключает режим добавления дорог.
func (h *EditorHandler) ToggleAddMode(c fiber.Ctx) error {
	return h.withEditor(c, func(e *editor.Editor) error {
		e.ToggleAddRoad()
		return nil
	})
}

// Click в режиме добавления создаёт дорогу 1x1 в клетке клика.
func (h *EditorHandler) Click(c fiber.Ctx) error {
	var req dragRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	return h.withEditor(c, func(e *editor.Editor) error {
		e.Click(grid.Point{X: req.X, Y: req.Y})
		return nil
	})
}

func (h *EditorHandler) DeleteItem(c fiber.Ctx) error {
	itemID := c.Params("itemId")
	return h.withEditor(c, func(e *editor.Editor) error {
		if !e.Delete(itemID) {
			return notFound("item not found")
		}
		return nil
	})
}

func (h *EditorHandler) Close(c fiber.Ctx) error {
	if !h.svc.CloseEditor(c.Params("id")) {
		return errorJSON(c, http.StatusNotFound, "instance not found")
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) withEditor(c fiber.Ctx, fn func(e *editor.Editor) error) error {
	id := c.Params("id")
	var out editorPayload
	err := h.svc.Editor(id, func(e *editor.Editor) error {
		if fn != nil {
			if err := fn(e); err != nil {
				return err
			}
		}
		out = mapEditor(id, e)
		return nil
	})
	if err != nil {
		return instanceError(c, err)
	}
	return c.JSON(out)
}
