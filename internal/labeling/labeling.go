// Package labeling produces short human-readable names for project groups.
package labeling

import "context"

// Labeler names a cluster from a small sample of member texts.
// A failure affects only the cluster being named; callers fall back to a
// placeholder and never retry.
type Labeler interface {
	NameCluster(ctx context.Context, sampleTexts []string) (string, error)
}
