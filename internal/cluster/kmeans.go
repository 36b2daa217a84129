// Package cluster implements the K-Means engine that partitions embedding
// vectors into groups using Lloyd's algorithm.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// DefaultMaxIterations bounds the assign/update loop when convergence is slow.
const DefaultMaxIterations = 50

var (
	// ErrNoVectors is returned when Run is called with no input vectors.
	ErrNoVectors = errors.New("cluster: no input vectors")

	// ErrInvalidK is returned when the requested cluster count is not positive.
	ErrInvalidK = errors.New("cluster: k must be at least 1")

	// ErrDimensionMismatch is returned when input vectors differ in dimensionality.
	ErrDimensionMismatch = errors.New("cluster: vector dimension mismatch")
)

// Config contains configuration for the clustering engine.
type Config struct {
	// MaxIterations is the upper bound on assign/update passes.
	MaxIterations int
	// Seed fixes the random source for centroid initialization and reseeding.
	// Zero means seed from the clock, which is the production default;
	// tests set a non-zero seed to make runs reproducible.
	Seed int64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{MaxIterations: DefaultMaxIterations}
}

// Engine runs Lloyd's K-Means over fixed-dimension float32 vectors.
// Each Run uses a fresh random source, so an engine is safe to reuse and two
// runs with the same seed and input produce identical results.
type Engine struct {
	config Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(config Config) *Engine {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	return &Engine{config: config}
}

// Result holds the output of one clustering run.
type Result struct {
	// Assignments maps each input vector index to a cluster index in [0, k).
	Assignments []int
	// Centroids are the final cluster centers, one per cluster.
	Centroids [][]float32
}

// Run partitions vectors into at most k clusters.
// k is clamped to the number of distinct input vectors. Non-convergence within
// MaxIterations is not an error; the current state is returned as best effort.
func (e *Engine) Run(vectors [][]float32, k int) (*Result, error) {
	n := len(vectors)
	if n == 0 {
		return nil, ErrNoVectors
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector 0 has %d dimensions, vector %d has %d",
				ErrDimensionMismatch, dim, i, len(v))
		}
	}

	seed := e.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	centroids := initCentroids(vectors, k, rng)
	k = len(centroids)

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < e.config.MaxIterations; iter++ {
		// Assignment step: nearest centroid by squared Euclidean distance,
		// ties broken by lowest centroid index.
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := math.MaxFloat64
			for c, centroid := range centroids {
				if d := squaredDistance(v, centroid); d < bestDist {
					bestDist = d
					best = c
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Update step: recompute each centroid as the mean of its members.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, v := range vectors {
			c := assignments[i]
			counts[c]++
			for j, x := range v {
				sums[c][j] += float64(x)
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// A cluster lost all members. Reseed it from the input set so
				// it becomes a live candidate again on the next pass.
				centroids[c] = cloneVector(vectors[rng.Intn(n)])
				continue
			}
			mean := make([]float32, dim)
			for j := range mean {
				mean[j] = float32(sums[c][j] / float64(counts[c]))
			}
			centroids[c] = mean
		}
	}

	return &Result{Assignments: assignments, Centroids: centroids}, nil
}

// initCentroids samples up to k distinct vectors without replacement.
// Duplicate input vectors count once, so the returned slice may be shorter
// than k when the input has fewer distinct values.
func initCentroids(vectors [][]float32, k int, rng *rand.Rand) [][]float32 {
	centroids := make([][]float32, 0, k)
	for _, idx := range rng.Perm(len(vectors)) {
		candidate := vectors[idx]
		duplicate := false
		for _, c := range centroids {
			if vectorsEqual(candidate, c) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		centroids = append(centroids, cloneVector(candidate))
		if len(centroids) == k {
			break
		}
	}
	return centroids
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func vectorsEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
