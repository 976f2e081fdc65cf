package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/asolytics/combo-engine/internal/bootstrap"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting combo-engine HTTP server",
		"port", cfg.Service.Port,
		"debug", cfg.Service.Debug,
	)

	components, err := bootstrap.NewHTTPComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize components", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = components.DB.Close()
	}()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- components.Server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), bootstrap.HTTPShutdownTimeout())
		defer cancel()

		if err := components.Server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
			os.Exit(1)
		}

		logger.Info("Server stopped gracefully")
	}
}
