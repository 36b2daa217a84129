package project

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name     string
		project  Project
		eligible bool
	}{
		{
			name:     "title only",
			project:  Project{Title: "Neon skyline"},
			eligible: true,
		},
		{
			name:     "prompt only",
			project:  Project{Prompts: []string{"a fox in watercolor"}},
			eligible: true,
		},
		{
			name:     "whitespace everywhere",
			project:  Project{Title: "   ", Prompts: []string{"\t", "  \n"}},
			eligible: false,
		},
		{
			name:     "completely empty",
			project:  Project{},
			eligible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.eligible, tt.project.Eligible())
		})
	}
}

func TestText(t *testing.T) {
	p := Project{
		Title:   "  Synthwave album cover  ",
		Prompts: []string{"retro sunset", "", "  chrome typography "},
	}
	assert.Equal(t, "Synthwave album cover retro sunset chrome typography", p.Text())
}

func TestFilterEligible_PreservesOrder(t *testing.T) {
	a := Project{ID: uuid.New(), Title: "first"}
	b := Project{ID: uuid.New()}
	c := Project{ID: uuid.New(), Prompts: []string{"third"}}

	eligible := FilterEligible([]Project{a, b, c})
	assert.Equal(t, []Project{a, c}, eligible)
}
