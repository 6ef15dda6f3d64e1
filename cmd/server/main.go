package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-analytics-service/internal/cache"
	"github.com/SAP-F-2025/learning-analytics-service/internal/config"
	"github.com/SAP-F-2025/learning-analytics-service/internal/handlers"
	"github.com/SAP-F-2025/learning-analytics-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-analytics-service/internal/services"
	"github.com/SAP-F-2025/learning-analytics-service/internal/utils"
	"github.com/SAP-F-2025/learning-analytics-service/internal/validator"
	"github.com/SAP-F-2025/learning-analytics-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	logger.Info("Configuration loaded",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"cache_ttl", cfg.CacheTTL.String(),
		"cohort_refresh_interval", cfg.CohortRefreshInterval.String())

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	eventPublisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer eventPublisher.Close()

	repo := postgres.NewRepository(db)
	analysisCache := cache.NewRedisCache(redisClient, slogger)

	analyticsService := services.NewAnalyticsService(repo, analysisCache, eventPublisher, slogger, cfg.CacheTTL)
	reportService := services.NewReportService(repo, slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ingestion feed consumer
	if cfg.Events.Enabled && cfg.Events.Publisher == "kafka" {
		consumer, err := cfg.Events.CreateIngestionConsumer(slogger, analyticsService)
		if err != nil {
			logger.Error("Failed to create ingestion consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ingestion consumer stopped", "error", err)
			}
		}()
		logger.Info("Ingestion consumer started", "topic", cfg.Events.InteractionTopic)
	}

	// Periodic cohort refresh, with one refresh up front so the online path
	// has risk verdicts from the start.
	go runCohortRefresher(ctx, analyticsService, cfg.CohortRefreshInterval, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(analyticsService, reportService, validator.New(), logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	logger.Info("Shutdown complete")
}

func runCohortRefresher(ctx context.Context, svc services.AnalyticsService, interval time.Duration, logger utils.Logger) {
	refresh := func() {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if _, err := svc.RefreshCohort(rctx); err != nil {
			logger.Error("Cohort refresh failed", "error", err)
		}
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
