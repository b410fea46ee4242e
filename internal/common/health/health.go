// Package health serves the liveness, readiness and startup probes of both
// services.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Check reports whether a dependency can serve requests.
type Check func(ctx context.Context) error

// ============================================================
// Health Check Handlers
// ============================================================

type Probes struct {
	checks  map[string]Check
	timeout time.Duration
}

// New returns probes whose readiness runs every named check.
func New(checks map[string]Check) *Probes {
	return &Probes{checks: checks, timeout: 2 * time.Second}
}

// Register mounts /health/live, /health/ready and /health/startup.
func (p *Probes) Register(r fiber.Router) {
	r.Get("/health/live", p.Liveness)
	r.Get("/health/ready", p.Readiness)
	r.Get("/health/startup", p.Startup)
}

func (p *Probes) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// Readiness answers 503 and names the failing checks when any check errors.
func (p *Probes) Readiness(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), p.timeout)
	defer cancel()

	failed := fiber.Map{}
	for name, check := range p.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "failed": failed})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func (p *Probes) Startup(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "started"})
}
