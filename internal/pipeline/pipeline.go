// Package pipeline orchestrates embedding, clustering and naming of projects.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/SaiKrishna-333/QuckAI/internal/cluster"
	"github.com/SaiKrishna-333/QuckAI/internal/embedding"
	"github.com/SaiKrishna-333/QuckAI/internal/labeling"
	"github.com/SaiKrishna-333/QuckAI/internal/project"
)

const (
	// MaxClusters caps the number of groups surfaced to the user.
	MaxClusters = 3

	// MinEligibleProjects is the minimum eligible input for a run.
	MinEligibleProjects = 2

	// LabelSampleSize is how many member texts are sent to the labeler per group.
	LabelSampleSize = 5
)

var (
	// ErrInsufficientData means fewer than two eligible projects were supplied.
	ErrInsufficientData = errors.New("pipeline: at least two eligible projects are required")

	// ErrEmbeddingUnavailable means the embedding batch call failed; fatal to the run.
	ErrEmbeddingUnavailable = errors.New("pipeline: embedding provider unavailable")

	// ErrRunInProgress means another clustering run is already in flight.
	ErrRunInProgress = errors.New("pipeline: clustering run already in progress")

	// ErrCancelled means the run was aborted by its context.
	ErrCancelled = errors.New("pipeline: clustering run cancelled")
)

// Cluster is one named group of projects returned to the caller.
type Cluster struct {
	Name      string      `json:"name"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// Pipeline groups projects by semantic similarity. It holds no state between
// runs beyond the in-flight guard; each invocation works on a private snapshot.
type Pipeline struct {
	embedder  embedding.Provider
	labeler   labeling.Labeler
	engineCfg cluster.Config
	running   atomic.Bool
}

// New creates a pipeline over the given collaborators.
func New(embedder embedding.Provider, labeler labeling.Labeler, engineCfg cluster.Config) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		labeler:   labeler,
		engineCfg: engineCfg,
	}
}

// Run clusters the given projects and names each group.
//
// At most one run may be in flight; a concurrent call returns ErrRunInProgress.
// Embedding failure and insufficient data abort the run with no partial output.
// A per-group naming failure degrades to a "Cluster N" placeholder instead.
func (p *Pipeline) Run(ctx context.Context, projects []project.Project) ([]Cluster, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	eligible := project.FilterEligible(projects)
	if len(eligible) < MinEligibleProjects {
		return nil, fmt.Errorf("%w: have %d", ErrInsufficientData, len(eligible))
	}

	texts := make([]string, len(eligible))
	for i, pr := range eligible {
		texts[i] = pr.Text()
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts",
			ErrEmbeddingUnavailable, len(vectors), len(texts))
	}

	k := len(eligible)
	if k > MaxClusters {
		k = MaxClusters
	}

	engine := cluster.NewEngine(p.engineCfg)
	result, err := engine.Run(vectors, k)
	if err != nil {
		return nil, fmt.Errorf("cluster projects: %w", err)
	}

	buckets := bucketize(eligible, texts, result)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	names := p.nameBuckets(ctx, buckets)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	clusters := make([]Cluster, len(buckets))
	for i, b := range buckets {
		clusters[i] = Cluster{Name: names[i], MemberIDs: b.memberIDs}
	}

	log.Info().
		Int("projects", len(projects)).
		Int("eligible", len(eligible)).
		Int("clusters", len(clusters)).
		Msg("Clustering run complete")

	return clusters, nil
}

type bucket struct {
	memberIDs []uuid.UUID
	samples   []string
}

// bucketize groups project IDs by assignment index, keeping member order and
// dropping buckets that ended up empty. Bucket order follows ascending
// assignment index.
func bucketize(eligible []project.Project, texts []string, result *cluster.Result) []bucket {
	k := len(result.Centroids)
	raw := make([]bucket, k)
	for i, c := range result.Assignments {
		raw[c].memberIDs = append(raw[c].memberIDs, eligible[i].ID)
		if len(raw[c].samples) < LabelSampleSize {
			raw[c].samples = append(raw[c].samples, texts[i])
		}
	}

	buckets := make([]bucket, 0, k)
	for _, b := range raw {
		if len(b.memberIDs) > 0 {
			buckets = append(buckets, b)
		}
	}
	return buckets
}

// nameBuckets fans out one naming call per bucket and joins the results in
// bucket order. Failures are logged and replaced by placeholders; naming
// never fails the run.
func (p *Pipeline) nameBuckets(ctx context.Context, buckets []bucket) []string {
	names := make([]string, len(buckets))

	g, gctx := errgroup.WithContext(ctx)
	for i := range buckets {
		i := i
		g.Go(func() error {
			name, err := p.labeler.NameCluster(gctx, buckets[i].samples)
			name = strings.TrimSpace(name)
			if err != nil || name == "" {
				log.Warn().Err(err).Int("cluster", i+1).Msg("Cluster naming failed, using placeholder")
				names[i] = fmt.Sprintf("Cluster %d", i+1)
				return nil
			}
			names[i] = name
			return nil
		})
	}
	// Workers only record outcomes, they never return errors.
	_ = g.Wait()

	return names
}
