// Package worker provides the HTTP service hosting the clustering pipeline.
package worker

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/SaiKrishna-333/QuckAI/internal/cluster"
	"github.com/SaiKrishna-333/QuckAI/internal/config"
	"github.com/SaiKrishna-333/QuckAI/internal/embedding"
	"github.com/SaiKrishna-333/QuckAI/internal/labeling"
	"github.com/SaiKrishna-333/QuckAI/internal/pipeline"
)

const (
	// MaxRequestBody limits incoming request bodies.
	MaxRequestBody = 1 << 20 // 1 MiB

	// ReadHeaderTimeout bounds slow-header clients.
	ReadHeaderTimeout = 10 * time.Second
)

// Service is the worker service hosting the clustering pipeline over HTTP.
type Service struct {
	version  string
	config   *config.Config
	pipeline *pipeline.Pipeline
	server   *http.Server
	ready    atomic.Bool
}

// NewService wires the pipeline from the given collaborators.
func NewService(version string, cfg *config.Config, embedder embedding.Provider, labeler labeling.Labeler) *Service {
	svc := &Service{
		version:  version,
		config:   cfg,
		pipeline: pipeline.New(embedder, labeler, cluster.DefaultConfig()),
	}
	svc.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.WorkerPort),
		Handler:           svc.routes(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
	return svc
}

func (s *Service) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(SecurityHeaders)
	r.Use(MaxBodySize(MaxRequestBody))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/cluster", s.handleCluster)
	return r
}

// Start begins serving in a background goroutine.
func (s *Service) Start() error {
	s.ready.Store(true)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("Worker listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Worker server failed")
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Service) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	return s.server.Shutdown(ctx)
}
