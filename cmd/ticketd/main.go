package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/tedxdyp/ticketd/docs"
	"github.com/tedxdyp/ticketd/internal/app"
	"github.com/tedxdyp/ticketd/internal/config"
)

// @title TEDxDYP Ticketing API
// @version 1.0
// @description Payment-gated booking backend for TEDxDYPAkurdi.
// @host localhost:8080
// @BasePath /
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	for _, name := range cfg.MissingSecrets() {
		logger.Warn("credential not set, dependent operations will fail", "env", name)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}
