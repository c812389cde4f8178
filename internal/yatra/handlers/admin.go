package handlers

import (
	"context"
	"log"
	"net/http"

	"yatramap/internal/yatra/repository"
	"yatramap/internal/yatra/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Admin Handler
// ============================================================

type AdminHandler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
}

func NewAdminHandler(repo *repository.Repository, sessions *service.SessionManager) *AdminHandler {
	return &AdminHandler{repo: repo, sessions: sessions}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login выдает bearer токен по паре login/password.
func (h *AdminHandler) Login(c fiber.Ctx) error {
	log.Printf("[AUTH] Login request")

	if len(c.Body()) == 0 {
		return errorJSON(c, http.StatusBadRequest, "empty body")
	}
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid json")
	}
	if req.Login == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "login and password required")
	}

	admin, err := h.repo.Authenticate(context.Background(), req.Login, req.Password)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(fiber.Map{
		"token": h.sessions.IssueAdmin(admin.ID),
		"admin": admin,
	})
}
