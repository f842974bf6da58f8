package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"odds-sync-service/internal/config"
	"odds-sync-service/internal/logging"
	"odds-sync-service/internal/server"
)

const appVersion = "dev"

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: "odds-sync-service",
		Version: appVersion,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", logging.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.FieldError, err)
		os.Exit(1)
	}
	srv.Run(ctx)
}
