package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"cad-editor/internal/cad/handlers"
	"cad-editor/internal/cad/service"
	"cad-editor/internal/cad/store"
	"cad-editor/internal/cad/tools"
	"cad-editor/internal/common/config"
	"cad-editor/internal/common/logger"
	"cad-editor/internal/common/metrics"
	"cad-editor/internal/common/middleware"
)

// ============================================================
// CAD Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.SetupWriter(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	router, err := openStores(cfg)
	if err != nil {
		log.Error("storage_init_failed", "err", err)
		os.Exit(1)
	}
	defer router.Close()

	svc := service.New(router, service.Options{
		MaxTextItems:          cfg.Limits.MaxTextItems,
		MaxBoundaryCandidates: cfg.Limits.MaxBoundaryCandidates,
	})
	cad := handlers.NewCADHandler(svc, tools.NewDispatcher(svc, cfg.Limits.ResultLimit))

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "CAD Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(router.Ping))
	app.Get("/health/startup", handlers.StartupProbe)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// ============================================================
	// Docs Routes
	// ============================================================

	app.Get("/docs/openapi.yaml", handlers.OpenAPI)
	app.Get("/docs", handlers.SwaggerUI)

	// ============================================================
	// CAD Routes
	// ============================================================

	cad.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("server_start", "addr", addr, "env", cfg.Environment, "document_root", cfg.Storage.DocumentRoot)

	if err := app.Listen(addr); err != nil {
		log.Error("server_failed", "err", err)
		os.Exit(1)
	}
}

// openStores собирает роутер хранилищ из конфигурации. SQLite wins over
// Postgres when both are configured.
func openStores(cfg *config.Config) (*store.Router, error) {
	r := &store.Router{Files: store.NewFileStore(cfg.Storage.DocumentRoot)}

	switch {
	case cfg.Storage.SQLitePath != "":
		db, err := store.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		r.SQL = store.NewSQLStore(db, store.SQLite)
	case cfg.Storage.PostgresDSN != "":
		db, err := store.OpenPostgres(cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		r.SQL = store.NewSQLStore(db, store.Postgres)
	}
	if r.SQL != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.SQL.Init(ctx); err != nil {
			r.Close()
			return nil, fmt.Errorf("init sql store: %w", err)
		}
	}

	if client := store.OpenRedis(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB); client != nil {
		r.Redis = store.NewRedisStore(client, "")
	}
	return r, nil
}
