package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger is the access log: one line per request with the bearer-session
// user when the auth middleware resolved one.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} | user=${locals:user} ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}
