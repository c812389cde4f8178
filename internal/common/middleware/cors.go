package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS разрешает все источники (dev). Заголовки сессии и авторизации
// перечислены явно, чтобы браузер отправлял их в preflight.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Content-Type", "Authorization", SessionHeader},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	})
}
