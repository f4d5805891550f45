// Daybreak daemon: owns the record store and the analytics offload worker,
// and exposes both to the UI over HTTP/WebSocket.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mwhelan/daybreak/internal/bridge"
	"github.com/mwhelan/daybreak/internal/config"
	"github.com/mwhelan/daybreak/internal/ingest"
	"github.com/mwhelan/daybreak/internal/offload"
	"github.com/mwhelan/daybreak/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting daybreakd", "addr", cfg.Server.Addr, "db", cfg.DBPath)

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := offload.NewWorker(cfg.Analytics.QueueSize, logger)
	worker.Start(ctx)
	slog.Info("Offload worker started", "queue_size", cfg.Analytics.QueueSize)

	handler := bridge.New(repo, worker, cfg.Analytics.WindowDays, cfg.Server.AllowedOrigin, logger)
	handler.Start(ctx)

	if cfg.Ingest.Enabled {
		go func() {
			if err := ingest.Watch(ctx, repo, cfg.Ingest.Dir, logger); err != nil {
				slog.Error("Ingest watcher failed", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("Listening", "addr", cfg.Server.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	worker.Stop()
	slog.Info("Shutdown complete")
}
