// Package project defines the immutable project snapshot used as clustering input.
package project

import (
	"strings"

	"github.com/google/uuid"
)

// Project is a snapshot of one creative project. The clustering pipeline
// receives these by value per invocation and never reaches into shared
// application state.
type Project struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Prompts []string  `json:"prompts,omitempty"`
}

// Eligible reports whether the project carries at least one non-blank
// descriptive field and can therefore be embedded.
func (p Project) Eligible() bool {
	if strings.TrimSpace(p.Title) != "" {
		return true
	}
	for _, prompt := range p.Prompts {
		if strings.TrimSpace(prompt) != "" {
			return true
		}
	}
	return false
}

// Text builds the embeddable blob from the title and prompts.
// Blank fields are skipped and the remainder is trimmed and space-joined.
func (p Project) Text() string {
	parts := make([]string, 0, len(p.Prompts)+1)
	if title := strings.TrimSpace(p.Title); title != "" {
		parts = append(parts, title)
	}
	for _, prompt := range p.Prompts {
		if s := strings.TrimSpace(prompt); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// FilterEligible returns the eligible subset in original relative order.
func FilterEligible(projects []Project) []Project {
	eligible := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Eligible() {
			eligible = append(eligible, p)
		}
	}
	return eligible
}
