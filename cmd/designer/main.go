package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	authhandlers "roomdesigner/internal/auth/handlers"
	"roomdesigner/internal/auth/repository"
	"roomdesigner/internal/auth/service"
	"roomdesigner/internal/common/config"
	"roomdesigner/internal/common/database"
	"roomdesigner/internal/common/health"
	"roomdesigner/internal/common/logging"
	"roomdesigner/internal/common/metrics"
	"roomdesigner/internal/common/middleware"
	"roomdesigner/internal/design/handlers"
	"roomdesigner/internal/design/live"
	"roomdesigner/internal/design/plan"
	"roomdesigner/internal/design/snapshot"
	"roomdesigner/internal/design/store"
	"roomdesigner/internal/discovery"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ============================================================
// Designer Service
// ============================================================

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	log := logging.New(cfg.Environment, cfg.LogLevel).With().Str("service", "designer").Logger()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("designer stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := m.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// ============================================================
	// Storage
	// ============================================================

	db, err := database.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	backend, err := snapshot.OpenBackend(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("open snapshot backend: %w", err)
	}
	defer backend.Close()

	st := store.Open(ctx, backend, store.WithLogger(log), store.WithMetrics(m))
	log.Info().
		Str("backend", backend.Name).
		Str("codec", cfg.SnapshotCodec).
		Int("projects", len(st.Projects())).
		Msg("store ready")

	repo := repository.New(db)
	if err := repo.Init(ctx, cfg.DemoLogin, cfg.DemoPassword); err != nil {
		return fmt.Errorf("init users: %w", err)
	}

	sessions := service.NewSessionManager()
	authHandler := authhandlers.NewAuthHandler(repo, sessions, st, log)
	designHandler := handlers.NewDesignHandler(st, plan.NewFileStorage(cfg.SourceDir), log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Room Designer",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())
	app.Use(middleware.Metrics(m))

	// ============================================================
	// Public Routes
	// ============================================================

	health.New(map[string]health.Check{
		"db": db.PingContext,
	}).Register(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Post("/login", authHandler.Login)

	// ============================================================
	// Session Routes
	// ============================================================

	authed := app.Group("", authHandler.RequireSession())
	authed.Post("/logout", authHandler.Logout)
	authed.Get("/me", authHandler.Me)
	designHandler.Register(authed)

	// ============================================================
	// Live feed & discovery
	// ============================================================

	if cfg.LiveAddr != "" {
		hub := live.NewHub(func(r *http.Request) bool {
			token := r.URL.Query().Get("token")
			if token == "" {
				token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			_, ok := sessions.Resolve(token)
			return ok
		}, log, m)
		defer hub.Attach(st)()
		defer hub.Close()

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		liveSrv := &http.Server{Addr: cfg.LiveAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", cfg.LiveAddr).Msg("live feed listening")
			if err := liveSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("live feed stopped")
			}
		}()
		defer liveSrv.Close()
	}

	if cfg.MDNSEnabled {
		port, err := strconv.Atoi(cfg.Port)
		if err != nil {
			return fmt.Errorf("mdns needs a numeric PORT: %w", err)
		}
		adv, err := discovery.Advertise(port, map[string]string{"version": "1", "live": cfg.LiveAddr})
		if err != nil {
			log.Warn().Err(err).Msg("mdns advertise failed")
		} else {
			defer adv.Shutdown()
			log.Info().Str("service", discovery.ServiceType).Int("port", port).Msg("advertising on mdns")
		}
	}

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Environment).Msg("starting designer")
		errc <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
