package middleware

import (
	"errors"
	"strconv"
	"time"

	"roomdesigner/internal/common/metrics"

	"github.com/gofiber/fiber/v3"
)

// Metrics records request duration by route pattern, so /projects/:id
// stays one series regardless of ids.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Method(), route, strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
