// Package main provides the entry point for the clustering worker service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/SaiKrishna-333/QuckAI/internal/config"
	"github.com/SaiKrishna-333/QuckAI/internal/embedding"
	"github.com/SaiKrishna-333/QuckAI/internal/labeling"
	"github.com/SaiKrishna-333/QuckAI/internal/worker"
)

var Version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().
		Str("version", Version).
		Msg("Starting QuckAI clustering worker")

	cfg := config.Load()

	embedder, err := embedding.NewOpenAIClient(embedding.OpenAIOptions{
		APIKey:     cfg.EmbeddingAPIKey,
		BaseURL:    cfg.EmbeddingBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create embedding client")
	}

	labeler, err := labeling.NewOpenAIClient(labeling.OpenAIOptions{
		APIKey:  cfg.LabelingAPIKey,
		BaseURL: cfg.LabelingBaseURL,
		Model:   cfg.LabelingModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create labeling client")
	}

	svc := worker.NewService(Version, cfg, embedder, labeler)
	if err := svc.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start service")
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := svc.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}

	log.Info().Msg("Worker shutdown complete")
}
