package orchestrator

import (
	"context"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
)

// Stage identifies a pipeline stage (0–4).
type Stage int

const (
	StagePlanning  Stage = 0
	StageStructure Stage = 1
	StageFiles     Stage = 2
	StageTests     Stage = 3
	StageDocs      Stage = 4
)

func (s Stage) String() string {
	names := [...]string{
		"planning",
		"structure",
		"files",
		"tests",
		"docs",
	}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ProgressEvent is emitted during a run.
type ProgressEvent struct {
	RunID   string
	Stage   Stage
	Section string // stage name or file path
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of a stage or file within a run.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
	ProgressFallback ProgressStatus = "fallback"
)

// Result is the output of PlanAndGenerate.
type Result struct {
	RunID string
	Plan  project.ArchitecturePlan
	Specs []project.FileSpec

	// StructureFallback is true when Specs is the default layout;
	// StructureReason says why.
	StructureFallback bool
	StructureReason   error

	// Graph is the design graph built from Specs.
	Graph graph.Store

	// Files holds one entry per spec that finished, in spec order.
	Files []project.GeneratedFile

	// Bundle holds generated files, then tests, then README.md.
	Bundle *project.Bundle

	Coherence []CoherenceIssue
}

// Orchestrator is the caller-facing surface of the synthesis engine.
type Orchestrator interface {
	// PlanAndGenerate runs plan, structure, files, tests and docs.
	PlanAndGenerate(ctx context.Context, r project.Requirements, opts ...RunOption) (*Result, error)

	// SynthesizeSingle forwards one prompt to the backend.
	SynthesizeSingle(ctx context.Context, prompt string, p backend.Params) (string, error)

	// Improve asks for a refactored version of code.
	Improve(ctx context.Context, code string, requirements []string, language string) (string, error)

	// GenerateTests asks for a test file covering code.
	GenerateTests(ctx context.Context, code, framework string, coverageTarget int) (string, error)

	// GenerateProject asks for a whole project in one delimited response.
	GenerateProject(ctx context.Context, r project.Requirements) (*project.Bundle, error)

	// Progress returns a channel that emits progress events.
	Progress() <-chan ProgressEvent
}

// RunOption adjusts a single PlanAndGenerate call.
type RunOption func(*runOptions)

type runOptions struct {
	includeTests bool
}

// WithTests overrides Config.IncludeTests for one run.
func WithTests(include bool) RunOption {
	return func(o *runOptions) { o.includeTests = include }
}
