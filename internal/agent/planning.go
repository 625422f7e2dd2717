package agent

import (
	"context"
	"strings"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/project"
)

// Planner turns requirements into a free-text architecture plan.
type Planner struct {
	base
}

// NewPlanner creates a Planner.
func NewPlanner(b backend.TextBackend, opts ...Option) *Planner {
	return &Planner{base: newBase(RolePlanner, b, opts)}
}

// Plan makes one backend call. Backend errors are returned unchanged; the
// caller treats them as fatal for the run.
func (p *Planner) Plan(ctx context.Context, r project.Requirements) (project.ArchitecturePlan, error) {
	arch := r.ArchitectureOrDefault()
	text, err := p.generate(ctx, backend.PhasePlanning, planPrompt(r), PlanParams)
	if err != nil {
		return project.ArchitecturePlan{}, err
	}
	return project.ArchitecturePlan{
		Requirements: r,
		Architecture: arch,
		Narrative:    strings.TrimSpace(text),
	}, nil
}
