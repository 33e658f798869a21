package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/topherchris420/signal-forge-pulse/internal/api/handlers"
	"github.com/topherchris420/signal-forge-pulse/internal/cache/redis"
	"github.com/topherchris420/signal-forge-pulse/internal/engine"
	"github.com/topherchris420/signal-forge-pulse/internal/ingestion"
	"github.com/topherchris420/signal-forge-pulse/internal/metrics"
	"github.com/topherchris420/signal-forge-pulse/internal/middleware/ratelimit"
	"github.com/topherchris420/signal-forge-pulse/internal/middleware/security"
	"github.com/topherchris420/signal-forge-pulse/internal/middleware/validation"
	"github.com/topherchris420/signal-forge-pulse/internal/storage/sqlite"
	"github.com/topherchris420/signal-forge-pulse/pkg/circuitbreaker"
	"github.com/topherchris420/signal-forge-pulse/pkg/config"
	appLogger "github.com/topherchris420/signal-forge-pulse/pkg/logger"
	"github.com/topherchris420/signal-forge-pulse/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Signal Forge Pulse API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *redis.Client
	var cacheBreaker *circuitbreaker.CircuitBreaker
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
			cacheBreaker = circuitbreaker.NewCircuitBreaker("redis-cache", circuitbreaker.Config{
				FailureThreshold: 5,
				SuccessThreshold: 2,
				Timeout:          30 * time.Second,
				Logger:           appLogger.Log,
			})
		}
	}

	hub := handlers.NewAlertStreamHub()

	engineOpts := engine.Options{
		CacheBreaker: cacheBreaker,
		Notifier:     hub,
		BaselineTTL:  time.Duration(cfg.Engine.BaselineCacheTTLSec) * time.Second,
		MissionTTL:   time.Duration(cfg.Engine.MissionCacheTTLSec) * time.Second,
		Retry:        retry.DefaultConfig(),
	}
	if cacheClient != nil {
		engineOpts.Cache = cacheClient
	}
	analysisEngine := engine.NewEngine(sqliteClient, engineOpts)

	processor := ingestion.NewProcessor(sqliteClient, analysisEngine)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.Server.MaxRequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Org-ID",
		AllowMethods: "GET, POST, PUT, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Server.Development,
	}))
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		MaxTextLength: cfg.Engine.MaxTextLength,
		Logger:        appLogger.Log,
	}))

	analyzeHandler := handlers.NewAnalyzeHandler(analysisEngine)
	communicationsHandler := handlers.NewCommunicationsHandler(processor)
	alertsHandler := handlers.NewAlertsHandler(sqliteClient)
	missionsHandler := handlers.NewMissionsHandler(sqliteClient, cacheClient)
	stabilizationHandler := handlers.NewStabilizationHandler(sqliteClient)

	api := app.Group("/api/v1")

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Post("/communications", communicationsHandler.HandleIngest)

	api.Get("/alerts", alertsHandler.HandleListOpen)
	api.Post("/alerts/:id/resolve", alertsHandler.HandleResolve)

	api.Put("/missions", missionsHandler.HandleUpsert)

	api.Post("/stabilization/alerts/:alert_id/interventions", stabilizationHandler.HandleGeneratePackage)
	api.Get("/stabilization/alerts/:alert_id/interventions", stabilizationHandler.HandleListInterventions)
	api.Post("/stabilization/interventions/:id/implemented", stabilizationHandler.HandleMarkImplemented)
	api.Post("/stabilization/interventions/:id/effectiveness", stabilizationHandler.HandleEffectiveness)

	api.Get("/alerts/stream", websocket.New(hub.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
