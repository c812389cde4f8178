package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Admin Auth Middleware
// ============================================================

// SessionHeader несёт токен сессии посетителя.
const SessionHeader = "X-Session-Token"

// AdminIDKey - ключ c.Locals с id администратора.
const AdminIDKey = "adminID"

// TokenResolver сопоставляет bearer токен с id администратора.
type TokenResolver interface {
	ResolveAdmin(token string) (string, bool)
}

// RequireAdmin пропускает только запросы с действующим bearer токеном.
func RequireAdmin(resolver TokenResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		auth := c.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		adminID, ok := resolver.ResolveAdmin(strings.TrimPrefix(auth, "Bearer "))
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		c.Locals(AdminIDKey, adminID)
		return c.Next()
	}
}
