package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"

	httpapi "github.com/i474232898/weather-readings-api/internal/api/http"
	"github.com/i474232898/weather-readings-api/internal/auth"
	"github.com/i474232898/weather-readings-api/internal/config"
	"github.com/i474232898/weather-readings-api/internal/ingest"
	"github.com/i474232898/weather-readings-api/internal/logging"
	"github.com/i474232898/weather-readings-api/internal/observability/metrics"
	"github.com/i474232898/weather-readings-api/internal/reading"
	"github.com/i474232898/weather-readings-api/internal/scheduler"
	"github.com/i474232898/weather-readings-api/internal/store"
	"github.com/i474232898/weather-readings-api/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := logging.New(cfg.AppEnv, cfg.LogLevel)
	// Handlers log through the default logger.
	slog.SetDefault(slogger)

	metrics.Init()

	// Store selection: Postgres when configured, in-memory otherwise.
	var readingStore reading.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			log.Fatalf("db ping error: %v", err)
		}
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("db schema error: %v", err)
		}
		readingStore = postgres.NewStore(db)
	} else {
		slogger.Warn("DATABASE_URL not set; using in-memory store, data will not survive restarts")
		readingStore = store.NewMemoryStore()
	}

	service := reading.NewService(readingStore, slogger)

	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.AdminPassword, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("auth setup error: %v", err)
	}

	// Optional scheduled ingest from Open-Meteo.
	if cfg.IngestEnabled {
		lat, lon, err := cfg.StationCoordinates()
		if err != nil {
			log.Fatalf("ingest station error: %v", err)
		}

		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		sched := scheduler.New(service, ingest.NewOpenMeteoClient(httpClient), lat, lon, cfg.FetchInterval, slogger)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Metrics on a separate listener, away from the public API.
	go func() {
		if err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler()); err != nil {
			slogger.Error("metrics listener stopped", "error", err)
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:               "weather-readings-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(httpapi.Metrics())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-readings-api",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, tokens)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}
}
