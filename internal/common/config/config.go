package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"yatramap/internal/mapview/grid"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	DBPath        string
	AdminLogin    string
	AdminPassword string
	CORS          bool

	Grid               grid.Grid
	ViewIdleTTL        time.Duration
	SweepInterval      time.Duration
	EditorWriteTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Если задан GRID_FILE, параметры сетки читаются из YAML.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

		DBPath:        getEnv("YATRA_DB_PATH", "data/yatra.db"),
		AdminLogin:    getEnv("ADMIN_LOGIN", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		CORS:          getEnvAsBool("CORS", true),

		Grid:               grid.Default(),
		ViewIdleTTL:        time.Duration(getEnvAsInt("VIEW_IDLE_TTL", 1800)) * time.Second,
		SweepInterval:      time.Duration(getEnvAsInt("SWEEP_INTERVAL", 60)) * time.Second,
		EditorWriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT_MS", 5000)) * time.Millisecond,
	}

	if path := os.Getenv("GRID_FILE"); path != "" {
		g, err := LoadGrid(path)
		if err != nil {
			return nil, err
		}
		cfg.Grid = g
	}
	return cfg, nil
}

// LoadGrid читает параметры сетки из YAML файла. Отсутствующие поля
// получают значения по умолчанию.
func LoadGrid(path string) (grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("read grid file: %w", err)
	}

	var g grid.Grid
	if err := yaml.Unmarshal(data, &g); err != nil {
		return grid.Grid{}, fmt.Errorf("parse grid file: %w", err)
	}
	return g.Normalize(), nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
