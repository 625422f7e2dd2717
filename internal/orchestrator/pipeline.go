package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/dusk-indust/scaffold/internal/agent"
	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
)

// Compile-time interface check.
var _ Orchestrator = (*Pipeline)(nil)

// Pipeline implements Orchestrator. It runs the stages in order, delegating
// concurrent file and test work to a FanOut and reporting progress through
// a ProgressReporter. A Pipeline holds no per-run state and may serve
// concurrent runs.
type Pipeline struct {
	cfg      Config
	backend  backend.TextBackend
	log      *log.Logger
	progress *ProgressReporter
	fanout   *FanOut

	planner  *agent.Planner
	designer *agent.StructureDesigner
	files    *agent.FileWriter
	tests    *agent.TestWriter
	docs     *agent.DocWriter
}

// NewPipeline wires every stage to b.
func NewPipeline(cfg Config, b backend.TextBackend) *Pipeline {
	cfg = cfg.withDefaults()
	progress := NewProgressReporter()
	opts := cfg.agentOptions()

	return &Pipeline{
		cfg:      cfg,
		backend:  b,
		log:      cfg.Logger,
		progress: progress,
		fanout:   NewFanOut(cfg.Workers, progress.Emit),
		planner:  agent.NewPlanner(b, opts...),
		designer: agent.NewStructureDesigner(b, opts...),
		files:    agent.NewFileWriter(b, opts...),
		tests:    agent.NewTestWriter(b, opts...),
		docs:     agent.NewDocWriter(b, opts...),
	}
}

// Progress returns a channel that emits progress events.
func (p *Pipeline) Progress() <-chan ProgressEvent {
	return p.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when the
// pipeline is no longer needed.
func (p *Pipeline) Close() {
	p.progress.Close()
}

func (p *Pipeline) stage(runID string, s Stage, status ProgressStatus, msg string) {
	p.progress.Emit(ProgressEvent{RunID: runID, Stage: s, Section: s.String(), Status: status, Message: msg})
}

// PlanAndGenerate runs the full pipeline. A planning failure is fatal and
// returns a nil Result. When ctx ends mid-run the Result holds everything
// committed so far and the error wraps ctx.Err().
func (p *Pipeline) PlanAndGenerate(ctx context.Context, r project.Requirements, opts ...RunOption) (*Result, error) {
	ro := runOptions{includeTests: p.cfg.IncludeTests}
	for _, o := range opts {
		o(&ro)
	}
	r = project.NewRequirements(r.Description, r.Technologies, r.Features, r.Architecture)

	res := &Result{RunID: uuid.NewString(), Bundle: project.NewBundle()}

	// Stage 0: planning.
	p.stage(res.RunID, StagePlanning, ProgressWorking, "")
	plan, err := p.planner.Plan(ctx, r)
	if err != nil {
		p.stage(res.RunID, StagePlanning, ProgressFailed, err.Error())
		if ctx.Err() != nil {
			return res, fmt.Errorf("orchestrator: %s: %w", StagePlanning, ctx.Err())
		}
		return nil, fmt.Errorf("orchestrator: plan: %w", err)
	}
	res.Plan = plan
	p.stage(res.RunID, StagePlanning, ProgressComplete, "")

	// Stage 1: structure.
	p.stage(res.RunID, StageStructure, ProgressWorking, "")
	sr := p.designer.Design(ctx, plan)
	res.Specs = sr.Specs
	res.StructureFallback = sr.Fallback
	res.StructureReason = sr.Reason
	res.Graph = sr.Graph
	if sr.Fallback {
		p.stage(res.RunID, StageStructure, ProgressFallback, sr.Reason.Error())
	} else {
		p.stage(res.RunID, StageStructure, ProgressComplete, fmt.Sprintf("%d files", len(sr.Specs)))
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("orchestrator: %s: %w", StageStructure, err)
	}

	// Stage 2: files.
	p.stage(res.RunID, StageFiles, ProgressWorking, "")
	if err := p.runFiles(ctx, res, sr.Graph); err != nil {
		p.stage(res.RunID, StageFiles, ProgressFailed, err.Error())
		return res, fmt.Errorf("orchestrator: %s: %w", StageFiles, err)
	}
	p.stage(res.RunID, StageFiles, ProgressComplete, fmt.Sprintf("%d files", len(res.Files)))

	// Stage 3: tests.
	if ro.includeTests {
		p.stage(res.RunID, StageTests, ProgressWorking, "")
		if err := p.runTests(ctx, res); err != nil {
			p.stage(res.RunID, StageTests, ProgressFailed, err.Error())
			return res, fmt.Errorf("orchestrator: %s: %w", StageTests, err)
		}
		p.stage(res.RunID, StageTests, ProgressComplete, "")
	}

	// Stage 4: docs. A failure is logged and the run continues.
	p.stage(res.RunID, StageDocs, ProgressWorking, "")
	readme, err := p.docs.Write(ctx, plan, res.Bundle, sr.Graph)
	switch {
	case ctx.Err() != nil:
		p.stage(res.RunID, StageDocs, ProgressFailed, ctx.Err().Error())
		return res, fmt.Errorf("orchestrator: %s: %w", StageDocs, ctx.Err())
	case err != nil:
		p.log.Printf("WARNING: documentation skipped: %v", err)
		p.stage(res.RunID, StageDocs, ProgressFailed, err.Error())
	default:
		res.Bundle.Set(agent.ReadmePath, readme)
		p.stage(res.RunID, StageDocs, ProgressComplete, "")
	}

	issues, err := CheckCoherence(ctx, res.Bundle, res.Files, sr.Graph, sr.Unresolved)
	if err != nil {
		p.log.Printf("WARNING: coherence check: %v", err)
	}
	res.Coherence = issues
	return res, nil
}

// runFiles synthesizes every spec under the worker limit. Dispatch follows
// dependency order; results are committed in spec order. A file whose
// context ended while it was being written is not committed.
func (p *Pipeline) runFiles(ctx context.Context, res *Result, g graph.Store) error {
	bySpec := make(map[string]int, len(res.Specs))
	for i, s := range res.Specs {
		bySpec[s.Path] = i
	}

	order, err := graph.Order(ctx, g)
	if err != nil && !errors.Is(err, graph.ErrCycle) {
		p.log.Printf("WARNING: dependency order unavailable: %v", err)
		order = nil
	}
	if len(order) != len(res.Specs) {
		order = order[:0]
		for _, s := range res.Specs {
			order = append(order, s.Path)
		}
	}

	slots := make([]*project.GeneratedFile, len(res.Specs))
	tasks := make([]Task, 0, len(order))
	for _, path := range order {
		i := bySpec[path]
		spec := res.Specs[i]
		tasks = append(tasks, Task{
			Section: spec.Path,
			Run: func(ctx context.Context) error {
				deps, err := graph.DirectDependencies(ctx, g, spec.Path)
				if err != nil {
					p.log.Printf("WARNING: dependencies of %s: %v", spec.Path, err)
				}
				gf := p.files.Write(ctx, spec, res.Plan, deps...)
				if err := ctx.Err(); err != nil {
					return err
				}
				slots[i] = &gf
				return nil
			},
		})
	}

	runErr := p.fanout.Run(ctx, res.RunID, StageFiles, tasks)

	for _, gf := range slots {
		if gf == nil {
			continue
		}
		res.Files = append(res.Files, *gf)
		res.Bundle.Set(gf.Path, gf.Content)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return runErr
}

// runTests writes one test per source file. Individual failures are logged
// and skipped.
func (p *Pipeline) runTests(ctx context.Context, res *Result) error {
	targets := p.tests.Targets(res.Bundle)
	slots := make([]*string, len(targets))
	tasks := make([]Task, len(targets))
	for i, t := range targets {
		tasks[i] = Task{
			Section: t.TestPath,
			Run: func(ctx context.Context) error {
				code, err := p.tests.WriteOne(ctx, t)
				if err != nil {
					if ctx.Err() == nil {
						p.log.Printf("WARNING: tests for %s skipped: %v", t.Source, err)
					}
					return err
				}
				slots[i] = &code
				return nil
			},
		}
	}

	// Task errors are already logged; only cancellation stops the run.
	_ = p.fanout.Run(ctx, res.RunID, StageTests, tasks)

	for i, t := range targets {
		if slots[i] != nil {
			res.Bundle.Set(t.TestPath, *slots[i])
		}
	}
	return ctx.Err()
}
