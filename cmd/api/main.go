package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/lifeos/internal/api/handlers"
	"github.com/dvloznov/lifeos/internal/app"
	"github.com/dvloznov/lifeos/internal/config"
	"github.com/dvloznov/lifeos/internal/jobs/inmemory"
	"github.com/dvloznov/lifeos/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env", "", "Path to a .env file (default: ./.env when present)")
		port    = flag.String("port", "", "HTTP server port (overrides LIFEOS_HTTP_PORT)")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *port != "" {
		cfg.HTTPPort = *port
	}

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()

	rt, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open application state")
	}
	for _, rep := range rt.Reports {
		if rep.Err != nil {
			log.Warn().Err(rep.Err).Str("key", string(rep.Key)).Msg("Record reset to default")
		}
	}

	// Initialize task infrastructure
	taskStore := inmemory.NewStore()
	taskQueue := inmemory.NewQueue(inmemory.Options{
		BufferSize: cfg.Tasks.Buffer,
		Workers:    cfg.Tasks.Workers,
		MaxRetries: cfg.Tasks.MaxRetries,
	}, taskStore, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.Tasks.Workers).Msg("Starting task workers")
	if err := taskQueue.Start(workerCtx, rt.HandleTask); err != nil {
		log.Fatal().Err(err).Msg("Failed to start task workers")
	}

	h := handlers.New(rt.App, taskQueue, taskStore, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handlers.NewRouter(h, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop task queue and wait for in-flight tasks
	if err := taskQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping task queue")
	}
	cancelWorker()

	if err := taskQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close task queue")
	}

	if err := rt.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to flush application state")
	}

	log.Info().Msg("Server exited")
}
