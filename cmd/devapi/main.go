package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/odyssey-backoffice/internal/app"
	"github.com/odyssey-erp/odyssey-backoffice/internal/devapi"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadServerConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	srv, err := devapi.New(ctx, cfg, logger, devapi.Options{})
	if err != nil {
		logger.Error("build dev api", slog.Any("error", err))
		os.Exit(1)
	}
	defer srv.Close()

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      srv.Handler,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting dev api",
			slog.String("addr", cfg.AppAddr),
			slog.String("prefix", app.APIPrefix),
			slog.Duration("latency", cfg.Latency),
			slog.Bool("legacy_categories", cfg.LegacyCategories))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
