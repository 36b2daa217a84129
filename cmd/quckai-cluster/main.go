// Package main provides a one-shot CLI that clusters a projects file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/SaiKrishna-333/QuckAI/internal/cluster"
	"github.com/SaiKrishna-333/QuckAI/internal/config"
	"github.com/SaiKrishna-333/QuckAI/internal/embedding"
	"github.com/SaiKrishna-333/QuckAI/internal/labeling"
	"github.com/SaiKrishna-333/QuckAI/internal/pipeline"
	"github.com/SaiKrishna-333/QuckAI/internal/project"
)

func main() {
	var (
		file    = flag.String("file", "", "path to a JSON file with an array of projects")
		seed    = flag.Int64("seed", 0, "random seed for reproducible runs (0 = random)")
		timeout = flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: quckai-cluster -file projects.json [-seed N]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read projects file")
	}
	var projects []project.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse projects file")
	}

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

	engineCfg := cluster.DefaultConfig()
	engineCfg.Seed = *seed

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pipe := pipeline.New(embedder, labeler, engineCfg)
	clusters, err := pipe.Run(ctx, projects)
	if err != nil {
		log.Fatal().Err(err).Msg("Clustering failed")
	}

	for _, c := range clusters {
		fmt.Printf("%s (%d projects)\n", c.Name, len(c.MemberIDs))
		for _, id := range c.MemberIDs {
			fmt.Printf("  - %s\n", id)
		}
	}
}
