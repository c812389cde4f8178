package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"yatramap/internal/yatra/repository"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Stall Handler
// ============================================================

type StallHandler struct {
	repo *repository.Repository
}

func NewStallHandler(repo *repository.Repository) *StallHandler {
	return &StallHandler{repo: repo}
}

// List отдаёт активные ларьки по порядку номеров.
func (h *StallHandler) List(c fiber.Ctx) error {
	stalls, err := h.repo.ListStalls(context.Background(), repository.ListFilter{ActiveOnly: true})
	if err != nil {
		log.Printf("[STALLS] list failed: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to list stalls")
	}
	return c.JSON(stalls)
}

// Get отдаёт карточку активного ларька. Неактивный для посетителя
// не существует, как и на карте.
func (h *StallHandler) Get(c fiber.Ctx) error {
	stall, err := h.repo.GetStall(context.Background(), c.Params("id"))
	if err == nil && !stall.Active {
		err = repository.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "stall not found")
		}
		log.Printf("[STALLS] get failed: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to load stall")
	}
	return c.JSON(stall)
}
