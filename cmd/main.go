package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checklist-api/internal/cache"
	"checklist-api/internal/clone"
	"checklist-api/internal/config"
	"checklist-api/internal/controller"
	"checklist-api/internal/database"
	"checklist-api/internal/queue"
	"checklist-api/internal/repository"
	"checklist-api/internal/routes"
	"checklist-api/internal/share"
	"checklist-api/internal/worker"
	"checklist-api/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Variables already set in the environment win over .env
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Get()
	logger.SetLevel(cfg.LogLevel)

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Database not available; exiting", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		os.Exit(1)
	}
	stores := repository.New(db)

	// Redis is optional; a disabled cache always misses
	listCache := cache.Connect(ctx, cfg)
	defer listCache.Close()

	deps := controller.Deps{
		Profiles:   stores.Profiles,
		Checklists: stores.Checklists,
		Tasks:      stores.Tasks,
		TimerLogs:  stores.TimerLogs,
		Shares:     share.NewService(stores.Shares, stores.Profiles, stores.Checklists, clone.New(stores.Checklists, stores.Tasks)),
		Cache:      listCache,
		BcryptCost: cfg.BcryptCost,
		Probes: map[string]func(context.Context) error{
			"database": db.PingContext,
			"redis":    listCache.Ping,
		},
	}

	// Async timer-log ingestion: producer in the API path, consumer in the background
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.AsyncTimerLogs() {
		queue.EnsureTopic(ctx, cfg)
		producer := queue.NewProducer(ctx, cfg)
		defer producer.Close()
		deps.Publisher = producer
		go worker.Run(workerCtx, cfg, stores.TimerLogs)
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(controller.New(deps)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	stopWorker()
	logger.Info(ctx, "Server stopped")
}
