package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger логирует запросы; для запросов к экземплярам видно id из пути.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | session: ${reqHeader:" + SessionHeader + "}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
