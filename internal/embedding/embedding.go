// Package embedding provides batch text embedding behind a swappable provider.
package embedding

import "context"

// Provider turns text into embedding vectors.
//
// EmbedBatch is atomic from the caller's perspective: it returns exactly one
// vector per input text, in input order, or fails as a whole. Implementations
// own any retry or backoff policy; callers never retry.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}
