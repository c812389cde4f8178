package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"yatramap/internal/common/middleware"
	"yatramap/internal/mapview/editor"
	"yatramap/internal/mapview/grid"
	"yatramap/internal/mapview/render"
	"yatramap/internal/yatra/models"
	"yatramap/internal/yatra/repository"
	"yatramap/internal/yatra/service"

	"github.com/gofiber/fiber/v3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

type testEnv struct {
	app  *fiber.App
	repo *repository.Repository
	maps *service.MapService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "yatra.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.New(db)
	ctx := context.Background()
	if err := repo.Init(ctx, "admin", "secret"); err != nil {
		t.Fatalf("init: %v", err)
	}
	seed := []models.Item{
		models.Stall{ID: "s1", Number: 1, Name: "Chai", Active: true, Placement: models.Placement{X: 2, Y: 2, Width: 2, Height: 1}},
		models.Stall{ID: "s2", Number: 2, Name: "Closed", Active: false, Placement: models.Placement{X: 6, Y: 2, Width: 2, Height: 1}},
		models.RoadSegment{ID: "r1", Placement: models.Placement{X: 0, Y: 4, Width: 10, Height: 1}},
	}
	for _, it := range seed {
		if err := repo.InsertItem(ctx, it); err != nil {
			t.Fatalf("seed %s: %v", it.ItemID(), err)
		}
	}

	maps := service.NewMapService(grid.Default(), repo, repo, editor.Options{})
	app := fiber.New()
	Register(app, Deps{
		Repo:     repo,
		Maps:     maps,
		Sessions: service.NewSessionManager(),
		Renderer: render.NewRenderer(render.DefaultStyle()),
	})
	return &testEnv{app: app, repo: repo, maps: maps}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func (e *testEnv) login(t *testing.T) map[string]string {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/v1/admin/login", loginRequest{Login: "admin", Password: "secret"}, nil)
	if status != http.StatusOK {
		t.Fatalf("login status = %d: %s", status, raw)
	}
	resp := decode[map[string]any](t, raw)
	return map[string]string{"Authorization": "Bearer " + resp["token"].(string)}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		if status, raw := env.do(t, http.MethodGet, path, nil, nil); status != http.StatusOK {
			t.Fatalf("%s = %d: %s", path, status, raw)
		}
	}
}

func TestGetMapHidesInactiveStalls(t *testing.T) {
	env := newTestEnv(t)
	status, raw := env.do(t, http.MethodGet, "/api/v1/map", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	resp := decode[struct {
		Grid   grid.Grid     `json:"grid"`
		Bounds grid.Rect     `json:"bounds"`
		Items  []itemPayload `json:"items"`
	}](t, raw)

	if resp.Grid != grid.Default() || len(resp.Items) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Items[0].Kind != "road" || resp.Items[1].ID != "s1" || resp.Items[1].Label != "1" {
		t.Fatalf("items = %+v", resp.Items)
	}
	// дорога 0..10 x 4..5, ларёк 2..4 x 2..3, отступ 2 клетки
	want := grid.Rect{MinX: 0, MinY: 0, MaxX: 480, MaxY: 280}
	if resp.Bounds != want {
		t.Fatalf("bounds = %+v, want %+v", resp.Bounds, want)
	}
}

func TestMapSVG(t *testing.T) {
	env := newTestEnv(t)
	status, raw := env.do(t, http.MethodGet, "/api/v1/map.svg?width=400&height=300", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, raw)
	}
	body := string(raw)
	if !strings.Contains(body, `data-stall="s1"`) || strings.Contains(body, `data-stall="s2"`) {
		t.Fatalf("svg = %s", body)
	}

	if status, _ := env.do(t, http.MethodGet, "/api/v1/map.svg?width=-5", nil, nil); status != http.StatusBadRequest {
		t.Fatalf("bad width status = %d", status)
	}
}

func TestViewLifecycle(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.do(t, http.MethodPost, "/api/v1/map/views", containerRequest{Width: 800, Height: 600}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create = %d: %s", status, raw)
	}
	view := decode[viewPayload](t, raw)
	base := view.Scale
	path := "/api/v1/map/views/" + view.ID

	// перетаскивание по пустому месту
	env.do(t, http.MethodPost, path+"/pointer", pointerRequest{Event: "down", X: 5, Y: 5}, nil)
	_, raw = env.do(t, http.MethodPost, path+"/pointer", pointerRequest{Event: "move", X: 25, Y: 15}, nil)
	moved := decode[pointerResponse](t, raw)
	if moved.View.State != "dragging" || moved.View.TransitionMS != 0 {
		t.Fatalf("during drag = %+v", moved.View)
	}
	if dx := moved.View.Offset.X - view.Offset.X; math.Abs(dx-20) > 1e-9 {
		t.Fatalf("drag dx = %v", dx)
	}
	_, raw = env.do(t, http.MethodPost, path+"/pointer", pointerRequest{Event: "up"}, nil)
	if up := decode[pointerResponse](t, raw); up.View.State != "idle" || up.View.TransitionMS != 150 {
		t.Fatalf("after up = %+v", up.View)
	}

	// клик по ларьку
	var stall itemPayload
	for _, it := range moved.View.Items {
		if it.ID == "s1" {
			stall = it
		}
	}
	center := stall.Screen.Center()
	_, raw = env.do(t, http.MethodPost, path+"/pointer", pointerRequest{Event: "down", X: center.X, Y: center.Y}, nil)
	click := decode[pointerResponse](t, raw)
	if click.Clicked == nil || click.Clicked.ID != "s1" || click.View.State != "idle" {
		t.Fatalf("click = %+v", click)
	}

	_, raw = env.do(t, http.MethodPost, path+"/zoom", zoomRequest{Delta: 100}, nil)
	if z := decode[viewPayload](t, raw); z.Scale != base*4 {
		t.Fatalf("zoom scale = %v, want %v", z.Scale, base*4)
	}
	_, raw = env.do(t, http.MethodPost, path+"/reset", nil, nil)
	if r := decode[viewPayload](t, raw); r.Scale != base || r.Offset != view.Offset {
		t.Fatalf("reset = %+v", r)
	}

	if status, _ := env.do(t, http.MethodPost, path+"/resize", containerRequest{Width: 0, Height: 600}, nil); status != http.StatusBadRequest {
		t.Fatalf("empty resize status = %d", status)
	}
	_, raw = env.do(t, http.MethodGet, path, nil, nil)
	if g := decode[viewPayload](t, raw); g.Scale != base || g.Offset != view.Offset {
		t.Fatalf("after rejected resize = %+v", g)
	}

	status, raw = env.do(t, http.MethodGet, path+"/svg", nil, nil)
	if status != http.StatusOK || !strings.Contains(string(raw), "<svg") {
		t.Fatalf("svg = %d", status)
	}

	if status, _ := env.do(t, http.MethodPost, path+"/pointer", pointerRequest{Event: "wiggle"}, nil); status != http.StatusBadRequest {
		t.Fatalf("unknown event status = %d", status)
	}
	if status, _ := env.do(t, http.MethodDelete, path, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete = %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, path, nil, nil); status != http.StatusNotFound {
		t.Fatalf("after delete = %d", status)
	}
}

func TestStalls(t *testing.T) {
	env := newTestEnv(t)

	_, raw := env.do(t, http.MethodGet, "/api/v1/stalls", nil, nil)
	stalls := decode[[]models.Stall](t, raw)
	if len(stalls) != 1 || stalls[0].Name != "Chai" {
		t.Fatalf("stalls = %+v", stalls)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/v1/stalls/s1", nil, nil); status != http.StatusOK {
		t.Fatalf("get s1 = %d", status)
	}
	// неактивный ларёк скрыт так же, как на карте
	if status, _ := env.do(t, http.MethodGet, "/api/v1/stalls/s2", nil, nil); status != http.StatusNotFound {
		t.Fatalf("get inactive s2 = %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/v1/stalls/nope", nil, nil); status != http.StatusNotFound {
		t.Fatalf("get missing = %d", status)
	}
}

func TestWelcomeShownOncePerSession(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.repo.CreateWelcomePopup(context.Background(), "https://cdn.example/welcome.png", true); err != nil {
		t.Fatal(err)
	}

	_, raw := env.do(t, http.MethodPost, "/api/v1/session", nil, nil)
	token := decode[map[string]string](t, raw)["token"]
	hdr := map[string]string{middleware.SessionHeader: token}

	_, raw = env.do(t, http.MethodGet, "/api/v1/session/welcome", nil, hdr)
	if w := decode[welcomeResponse](t, raw); !w.Show || w.Popup == nil {
		t.Fatalf("first welcome = %+v", w)
	}
	if status, _ := env.do(t, http.MethodPost, "/api/v1/session/welcome/dismiss", nil, hdr); status != http.StatusNoContent {
		t.Fatalf("dismiss = %d", status)
	}
	_, raw = env.do(t, http.MethodGet, "/api/v1/session/welcome", nil, hdr)
	if w := decode[welcomeResponse](t, raw); w.Show {
		t.Fatalf("after dismiss = %+v", w)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/v1/session/welcome", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("no session = %d", status)
	}
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body any
		want int
	}{
		{"empty", nil, http.StatusBadRequest},
		{"missing password", loginRequest{Login: "admin"}, http.StatusBadRequest},
		{"wrong password", loginRequest{Login: "admin", Password: "nope"}, http.StatusUnauthorized},
		{"ok", loginRequest{Login: "admin", Password: "secret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, raw := env.do(t, http.MethodPost, "/api/v1/admin/login", tt.body, nil); status != tt.want {
				t.Fatalf("status = %d, want %d: %s", status, tt.want, raw)
			}
		})
	}
}

func TestEditorRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	if status, _ := env.do(t, http.MethodPost, "/api/v1/admin/editor", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("status = %d", status)
	}
}

func TestEditorFlowPersists(t *testing.T) {
	env := newTestEnv(t)
	auth := env.login(t)

	status, raw := env.do(t, http.MethodPost, "/api/v1/admin/editor", nil, auth)
	if status != http.StatusCreated {
		t.Fatalf("open = %d: %s", status, raw)
	}
	ed := decode[editorPayload](t, raw)
	if len(ed.Items) != 3 || ed.Mode != "move" {
		t.Fatalf("editor = %+v", ed)
	}
	path := "/api/v1/admin/editor/" + ed.ID

	// s1 в (2,2): хватаем за (90,85), внутри ларька смещение (10,5)
	if status, raw := env.do(t, http.MethodPost, path+"/drag", dragRequest{ItemID: "s1", X: 90, Y: 85}, auth); status != http.StatusOK {
		t.Fatalf("drag = %d: %s", status, raw)
	}
	_, raw = env.do(t, http.MethodPost, path+"/drop", dragRequest{X: 215, Y: 330}, auth)
	if d := decode[editorPayload](t, raw); d.Captured != "" {
		t.Fatalf("still captured: %+v", d)
	}

	env.do(t, http.MethodPost, path+"/resize", resizeRequest{ItemID: "s1", DW: 10, DH: 1}, auth)
	if status, _ := env.do(t, http.MethodPost, path+"/resize", resizeRequest{ItemID: "r1", DW: 1}, auth); status != http.StatusBadRequest {
		t.Fatalf("resize road = %d", status)
	}
	if status, _ := env.do(t, http.MethodPost, path+"/resize", resizeRequest{ItemID: "ghost", DW: 1}, auth); status != http.StatusNotFound {
		t.Fatalf("resize ghost = %d", status)
	}
	_, raw = env.do(t, http.MethodPost, path+"/add-mode", nil, auth)
	if m := decode[editorPayload](t, raw); m.Mode != "add_road" {
		t.Fatalf("mode = %q", m.Mode)
	}
	_, raw = env.do(t, http.MethodPost, path+"/click", dragRequest{X: 9999, Y: 45}, auth)
	if c := decode[editorPayload](t, raw); len(c.Items) != 4 {
		t.Fatalf("after click items = %d", len(c.Items))
	}
	if status, _ := env.do(t, http.MethodDelete, path+"/items/r1", nil, auth); status != http.StatusOK {
		t.Fatalf("delete = %d", status)
	}
	if status, _ := env.do(t, http.MethodDelete, path+"/items/r1", nil, auth); status != http.StatusNotFound {
		t.Fatalf("second delete = %d", status)
	}
	if status, _ := env.do(t, http.MethodPost, path+"/drag", dragRequest{ItemID: "ghost"}, auth); status != http.StatusNotFound {
		t.Fatalf("drag ghost = %d", status)
	}

	if err := env.maps.Editor(ed.ID, func(e *editor.Editor) error { e.Wait(); return nil }); err != nil {
		t.Fatal(err)
	}

	s1, err := env.repo.GetStall(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if s1.X != 5 || s1.Y != 8 || s1.Width != 5 || s1.Height != 2 {
		t.Fatalf("persisted s1 = %+v", s1.Placement)
	}
	roads, err := env.repo.ListRoads(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(roads) != 1 || roads[0].X != grid.DefaultCols-1 || roads[0].Y != 1 {
		t.Fatalf("roads = %+v", roads)
	}
	if status, _ := env.do(t, http.MethodDelete, path, nil, auth); status != http.StatusNoContent {
		t.Fatalf("close = %d", status)
	}
}
