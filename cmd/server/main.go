package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmutonyi/assetimport/internal/client"
	"github.com/dmutonyi/assetimport/internal/config"
	"github.com/dmutonyi/assetimport/internal/importer"
	"github.com/dmutonyi/assetimport/internal/logging"
	"github.com/dmutonyi/assetimport/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"import_workers", cfg.Import.Workers,
		"max_file_size", cfg.Import.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	store := client.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)
	service := importer.NewService(store, cfg.Import.Workers)
	server := web.NewServer(service, store, cfg)

	// Warm the category cache; the selector works without it, so a cold
	// store only logs a warning here.
	if cats, err := store.Categories(context.Background()); err != nil {
		slog.Warn("category prefetch failed", "error", err)
	} else {
		slog.Info("categories cached", "count", len(cats))
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
