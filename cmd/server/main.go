package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/avolkov/chainstats/internal/analytics"
	"github.com/avolkov/chainstats/internal/api"
	"github.com/avolkov/chainstats/internal/cache"
	"github.com/avolkov/chainstats/internal/config"
	"github.com/avolkov/chainstats/internal/database"
	"github.com/avolkov/chainstats/internal/middleware"
	"github.com/avolkov/chainstats/internal/telemetry"
)

func main() {
	// Missing .env is fine, configuration falls back to env vars and defaults.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	tracing, err := telemetry.Init(cfg.Tracing.Enabled, cfg.Environment)
	if err != nil {
		logrus.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Warn("Tracing shutdown failed")
		}
	}()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	var pool database.DatabasePool = db.Pool
	if cfg.Tracing.Enabled {
		pool = database.NewTracedPool(pool)
	}
	ledgerRepo := database.NewLedgerRepository(pool, cfg.Database.LedgerPartitions)
	quoteRepo := database.NewQuoteRepository(pool)
	statsRepo := database.NewDailyStatsRepository(pool)
	benchmarkCache := cache.NewRedisBenchmarkCache(redis.Client, cfg.Analytics.CacheTTL())

	planner := analytics.NewConcurrencyPlanner(cfg.Analytics.MinWorkers, cfg.Analytics.MaxWorkers)
	service := analytics.NewService(ledgerRepo, quoteRepo, statsRepo, benchmarkCache, analytics.Config{
		FillLookbackDays: cfg.Analytics.FillLookbackDays,
		Workers:          planner.Workers(),
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	if cfg.Tracing.Enabled {
		router.Use(otelgin.Middleware(telemetry.ServiceName))
	}

	api.SetupRoutes(router, service, db, redis)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
