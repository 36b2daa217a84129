package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiKrishna-333/QuckAI/internal/cluster"
	"github.com/SaiKrishna-333/QuckAI/internal/project"
)

// stubEmbedder maps each text to a fixed vector.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   atomic.Int32
	entered chan struct{} // closed on first call when non-nil
	release chan struct{} // blocks the call until closed when non-nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.calls.Add(1) == 1 && s.entered != nil {
		close(s.entered)
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", t)
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return 2 }
func (s *stubEmbedder) Model() string   { return "stub" }

// stubLabeler names clusters from the first sample, failing on marked samples.
type stubLabeler struct {
	failSubstring string
	err           error
	calls         atomic.Int32
}

func (s *stubLabeler) NameCluster(ctx context.Context, sampleTexts []string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	for _, t := range sampleTexts {
		if s.failSubstring != "" && strings.Contains(t, s.failSubstring) {
			return "", errors.New("labeler down")
		}
	}
	return "Theme: " + sampleTexts[0], nil
}

func newProject(title string) project.Project {
	return project.Project{ID: uuid.New(), Title: title}
}

func testEngineConfig() cluster.Config {
	return cluster.Config{MaxIterations: 50, Seed: 42}
}

func TestRun_InsufficientData(t *testing.T) {
	embedder := &stubEmbedder{}
	pipe := New(embedder, &stubLabeler{}, testEngineConfig())

	projects := []project.Project{
		newProject("only eligible one"),
		{ID: uuid.New(), Title: "   "}, // ineligible
	}

	clusters, err := pipe.Run(context.Background(), projects)
	assert.Nil(t, clusters)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Zero(t, embedder.calls.Load(), "embedder must not be called")
}

func TestRun_EmbeddingFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("provider exploded")}
	labeler := &stubLabeler{}
	pipe := New(embedder, labeler, testEngineConfig())

	clusters, err := pipe.Run(context.Background(), []project.Project{
		newProject("one"), newProject("two"),
	})
	assert.Nil(t, clusters)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	assert.Zero(t, labeler.calls.Load(), "labeler must not be called")
}

func TestRun_ShortBatchIsEmbeddingFailure(t *testing.T) {
	// A stub that silently drops a vector violates the atomic-batch contract.
	embedder := &stubEmbedder{vectors: map[string][]float32{"one": {0, 0}}}
	pipe := New(embedder, &stubLabeler{}, testEngineConfig())

	clusters, err := pipe.Run(context.Background(), []project.Project{
		newProject("one"), newProject("two"),
	})
	assert.Nil(t, clusters)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func threeGroupInput() ([]project.Project, map[string][]float32) {
	projects := []project.Project{
		newProject("sunset a"), newProject("sunset b"),
		newProject("robot a"), newProject("robot b"),
		newProject("forest a"), newProject("forest b"),
	}
	vectors := map[string][]float32{
		"sunset a": {0, 0}, "sunset b": {0.1, 0},
		"robot a": {10, 0}, "robot b": {10.1, 0},
		"forest a": {0, 10}, "forest b": {0, 10.1},
	}
	return projects, vectors
}

func TestRun_GroupsBySimilarity(t *testing.T) {
	projects, vectors := threeGroupInput()
	pipe := New(&stubEmbedder{vectors: vectors}, &stubLabeler{}, testEngineConfig())

	clusters, err := pipe.Run(context.Background(), projects)
	require.NoError(t, err)
	require.Len(t, clusters, 3)

	byID := make(map[uuid.UUID]int)
	for idx, c := range clusters {
		assert.NotEmpty(t, c.Name)
		assert.Len(t, c.MemberIDs, 2)
		for _, id := range c.MemberIDs {
			byID[id] = idx
		}
	}
	// Pairs land together.
	for i := 0; i < len(projects); i += 2 {
		assert.Equal(t, byID[projects[i].ID], byID[projects[i+1].ID],
			"projects %q and %q should share a cluster", projects[i].Title, projects[i+1].Title)
	}
}

func TestRun_SingleNamingFailureDegrades(t *testing.T) {
	projects, vectors := threeGroupInput()
	labeler := &stubLabeler{failSubstring: "robot"}
	pipe := New(&stubEmbedder{vectors: vectors}, labeler, testEngineConfig())

	clusters, err := pipe.Run(context.Background(), projects)
	require.NoError(t, err)
	require.Len(t, clusters, 3)

	placeholders := 0
	for idx, c := range clusters {
		if strings.HasPrefix(c.Name, "Cluster ") {
			placeholders++
			assert.Equal(t, fmt.Sprintf("Cluster %d", idx+1), c.Name)
		} else {
			assert.True(t, strings.HasPrefix(c.Name, "Theme: "))
		}
	}
	assert.Equal(t, 1, placeholders, "exactly one cluster should fall back to a placeholder")
}

func TestRun_Idempotent(t *testing.T) {
	projects, vectors := threeGroupInput()
	pipe := New(&stubEmbedder{vectors: vectors}, &stubLabeler{}, testEngineConfig())

	first, err := pipe.Run(context.Background(), projects)
	require.NoError(t, err)
	second, err := pipe.Run(context.Background(), projects)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].MemberIDs, second[i].MemberIDs)
	}
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	projects, vectors := threeGroupInput()
	embedder := &stubEmbedder{
		vectors: vectors,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	pipe := New(embedder, &stubLabeler{}, testEngineConfig())

	done := make(chan error, 1)
	go func() {
		_, err := pipe.Run(context.Background(), projects)
		done <- err
	}()

	<-embedder.entered
	_, err := pipe.Run(context.Background(), projects)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(embedder.release)
	require.NoError(t, <-done)

	// Guard is released after completion.
	_, err = pipe.Run(context.Background(), projects)
	assert.NoError(t, err)
}

func TestRun_Cancellation(t *testing.T) {
	projects, vectors := threeGroupInput()
	embedder := &stubEmbedder{
		vectors: vectors,
		release: make(chan struct{}), // never released; only ctx unblocks
	}
	pipe := New(embedder, &stubLabeler{}, testEngineConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := pipe.Run(ctx, projects)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not abort on cancellation")
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := &stubEmbedder{}
	pipe := New(embedder, &stubLabeler{}, testEngineConfig())

	_, err := pipe.Run(ctx, []project.Project{newProject("one"), newProject("two")})
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Zero(t, embedder.calls.Load())
}

func TestRun_TwoProjects(t *testing.T) {
	projects := []project.Project{newProject("alpha"), newProject("beta")}
	vectors := map[string][]float32{
		"alpha": {0, 0},
		"beta":  {5, 5},
	}
	pipe := New(&stubEmbedder{vectors: vectors}, &stubLabeler{}, testEngineConfig())

	clusters, err := pipe.Run(context.Background(), projects)
	require.NoError(t, err)

	// k = min(2, 3) = 2, one project each.
	require.Len(t, clusters, 2)
	total := 0
	for _, c := range clusters {
		total += len(c.MemberIDs)
	}
	assert.Equal(t, 2, total)
}
