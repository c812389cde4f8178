package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yatramap/internal/mapview/grid"
)

const layout = `
stalls:
  - id: chai
    number: 1
    x: 2
    y: 2
  - id: closed
    number: 2
    x: 10
    y: 10
    inactive: true
roads:
  - id: main
    x: 0
    y: 4
    width: 10
`

func TestSeedBoundsRender(t *testing.T) {
	t.Setenv("GRID_FILE", "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "yatra.db")
	layoutPath := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(layoutPath, []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := runSeed(ctx, dbPath, layoutPath); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var buf bytes.Buffer
	if err := runBounds(ctx, &buf, dbPath, true); err != nil {
		t.Fatalf("bounds: %v", err)
	}
	var resp struct {
		Items  int       `json:"items"`
		Bounds grid.Rect `json:"bounds"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Items != 2 || resp.Bounds != (grid.Rect{MinX: 0, MinY: 0, MaxX: 480, MaxY: 280}) {
		t.Fatalf("bounds = %+v", resp)
	}

	out := filepath.Join(dir, "map.svg")
	if err := runRender(ctx, &buf, dbPath, 400, 300, out); err != nil {
		t.Fatalf("render: %v", err)
	}
	svg, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), `data-road="main"`) || strings.Contains(string(svg), `data-stall="closed"`) {
		t.Fatalf("svg = %s", svg)
	}

	if err := runRender(ctx, &buf, dbPath, 0, 300, ""); err == nil {
		t.Fatal("zero width accepted")
	}
}

func TestSeedDuplicateLeavesDatabaseEmpty(t *testing.T) {
	t.Setenv("GRID_FILE", "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "yatra.db")
	layoutPath := filepath.Join(dir, "layout.yaml")
	dup := layout + "  - id: side\n    x: 0\n    y: 6\n" + "welcome:\n  - image_url: https://cdn.example/w.png\n"
	dup = strings.Replace(dup, "number: 2", "number: 1", 1)
	if err := os.WriteFile(layoutPath, []byte(dup), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := runSeed(ctx, dbPath, layoutPath); err == nil {
		t.Fatal("duplicate stall number accepted")
	}

	var buf bytes.Buffer
	if err := runBounds(ctx, &buf, dbPath, false); err != nil {
		t.Fatalf("bounds: %v", err)
	}
	var resp struct {
		Items int `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Items != 0 {
		t.Fatalf("items after failed seed = %d", resp.Items)
	}
}
