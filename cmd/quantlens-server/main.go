package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantlens/quantlens/internal/clients/eodhd"
	"github.com/quantlens/quantlens/internal/common"
	"github.com/quantlens/quantlens/internal/server"
	"github.com/quantlens/quantlens/internal/services/analysis"
	"github.com/quantlens/quantlens/internal/storage"
)

func main() {
	configPath := os.Getenv("QUANTLENS_CONFIG")

	cfg, err := common.LoadConfig("quantlens.toml", configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", cfg.Environment).
		Msg("Starting QuantLens server")

	if cfg.Clients.EODHD.APIKey == "" {
		logger.Fatal().Msg("EODHD API key is not configured (set EODHD_API_KEY)")
	}

	cache, err := storage.NewBadgerCache(logger, cfg.Storage.CachePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Storage.CachePath).Msg("Failed to open series cache")
	}
	defer cache.Close()

	client := eodhd.NewClient(cfg.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(cfg.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(cfg.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(cfg.Clients.EODHD.GetTimeout()),
	)

	service := analysis.NewService(client, cache, cfg, logger)
	srv := server.New(cfg, logger, service)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)).
		Msg("Server ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
