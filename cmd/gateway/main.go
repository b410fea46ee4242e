package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomdesigner/internal/common/config"
	"roomdesigner/internal/common/health"
	"roomdesigner/internal/common/logging"
	"roomdesigner/internal/common/middleware"
	"roomdesigner/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

const apiPrefix = "/api/v1"

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Environment, cfg.LogLevel).With().Str("service", "gateway").Logger()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Room Designer Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	designer := proxy.New(cfg.DesignerURL, apiPrefix, time.Duration(cfg.WriteTimeout)*time.Second, log)
	health.New(map[string]health.Check{
		"designer": designer.Ready,
	}).Register(app)

	// ============================================================
	// API Routes
	// ============================================================

	app.Get(apiPrefix, func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Room Designer API v1",
			"status":  "ok",
		})
	})
	app.All(apiPrefix+"/*", designer.Handler())

	// ============================================================
	// Server Start
	// ============================================================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%s", cfg.Port)
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Environment).Str("designer", cfg.DesignerURL).Msg("starting gateway")
		errc <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errc:
		log.Fatal().Err(err).Msg("failed to start server")
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}
}
