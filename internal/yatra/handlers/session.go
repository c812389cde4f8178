package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"yatramap/internal/common/middleware"
	"yatramap/internal/yatra/models"
	"yatramap/internal/yatra/repository"
	"yatramap/internal/yatra/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Session Handler
// ============================================================

// SessionHandler ведёт сессии посетителей и приветственный попап.
// Попап показывается один раз за сессию.
type SessionHandler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
}

func NewSessionHandler(repo *repository.Repository, sessions *service.SessionManager) *SessionHandler {
	return &SessionHandler{repo: repo, sessions: sessions}
}

type welcomeResponse struct {
	Show  bool                 `json:"show"`
	Popup *models.WelcomePopup `json:"popup,omitempty"`
}

func (h *SessionHandler) Start(c fiber.Ctx) error {
	token := h.sessions.StartVisitor()
	return c.Status(http.StatusCreated).JSON(fiber.Map{"token": token})
}

// Welcome сообщает, нужно ли показать попап в этой сессии.
func (h *SessionHandler) Welcome(c fiber.Ctx) error {
	st, ok := h.sessions.Visitor(c.Get(middleware.SessionHeader))
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "unknown session")
	}
	if st.WelcomeDismissed {
		return c.JSON(welcomeResponse{})
	}

	popup, err := h.repo.ActiveWelcomePopup(context.Background())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(welcomeResponse{})
		}
		log.Printf("[SESSION] welcome popup lookup failed: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to load welcome popup")
	}
	return c.JSON(welcomeResponse{Show: true, Popup: popup})
}

func (h *SessionHandler) Dismiss(c fiber.Ctx) error {
	if !h.sessions.DismissWelcome(c.Get(middleware.SessionHeader)) {
		return errorJSON(c, http.StatusUnauthorized, "unknown session")
	}
	return c.SendStatus(http.StatusNoContent)
}
