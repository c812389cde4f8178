package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"yatramap/internal/mapview/editor"
	"yatramap/internal/mapview/grid"
	"yatramap/internal/mapview/viewport"
	"yatramap/internal/yatra/models"
	"yatramap/internal/yatra/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Payloads
// ============================================================

type itemPayload struct {
	ID     string     `json:"id"`
	Kind   string     `json:"kind"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Label  string     `json:"label,omitempty"`
	Active *bool      `json:"is_active,omitempty"`
	Screen *grid.Rect `json:"screen,omitempty"`
}

type viewPayload struct {
	ID           string             `json:"id"`
	Scale        float64            `json:"scale"`
	Baseline     float64            `json:"baseline"`
	Offset       grid.Point         `json:"offset"`
	State        string             `json:"state"`
	TransitionMS int64              `json:"transition_ms"`
	Container    viewport.Container `json:"container"`
	Bounds       grid.Rect          `json:"bounds"`
	Items        []itemPayload      `json:"items"`
}

type editorPayload struct {
	ID       string        `json:"id"`
	Mode     string        `json:"mode"`
	Captured string        `json:"captured,omitempty"`
	Pending  int           `json:"pending"`
	Failures int           `json:"failures"`
	Grid     grid.Grid     `json:"grid"`
	Items    []itemPayload `json:"items"`
}

func mapItem(it models.Item) itemPayload {
	p := it.Place()
	out := itemPayload{
		ID:     it.ItemID(),
		Kind:   string(it.ItemKind()),
		X:      p.X,
		Y:      p.Y,
		Width:  p.Width,
		Height: p.Height,
	}
	if s, ok := it.(models.Stall); ok {
		active := s.Active
		out.Label = s.Label()
		out.Active = &active
	}
	return out
}

func mapItems(items []models.Item) []itemPayload {
	out := make([]itemPayload, 0, len(items))
	for _, it := range items {
		out = append(out, mapItem(it))
	}
	return out
}

func mapView(id string, v *viewport.Viewport) viewPayload {
	items := make([]itemPayload, 0, len(v.Items()))
	for _, it := range v.Items() {
		p := mapItem(it)
		screen := v.ScreenRect(it)
		p.Screen = &screen
		items = append(items, p)
	}
	return viewPayload{
		ID:           id,
		Scale:        v.Scale(),
		Baseline:     v.Baseline(),
		Offset:       v.Offset(),
		State:        v.State().String(),
		TransitionMS: v.Transition().Milliseconds(),
		Container:    v.Container(),
		Bounds:       v.Bounds(),
		Items:        items,
	}
}

func mapEditor(id string, e *editor.Editor) editorPayload {
	captured, _ := e.Captured()
	return editorPayload{
		ID:       id,
		Mode:     e.Mode().String(),
		Captured: captured,
		Pending:  e.Pending(),
		Failures: e.Failures(),
		Grid:     e.Grid(),
		Items:    mapItems(e.Layout().Items()),
	}
}

// ============================================================
// Helpers
// ============================================================

func errorJSON(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// parseBody разбирает JSON тело запроса; пустое тело оставляет dst без изменений.
func parseBody(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return json.Unmarshal(c.Body(), dst)
}

// instanceError переводит ошибки реестра в HTTP ответ.
func instanceError(c fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrUnknownInstance) {
		return errorJSON(c, http.StatusNotFound, "instance not found")
	}
	var re *requestError
	if errors.As(err, &re) {
		return errorJSON(c, re.status, re.msg)
	}
	return errorJSON(c, http.StatusInternalServerError, err.Error())
}

// requestError возвращается из замыканий над экземпляром, когда
// ответ должен быть не 500.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(msg string) error {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

func notFound(msg string) error {
	return &requestError{status: http.StatusNotFound, msg: msg}
}
