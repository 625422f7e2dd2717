// Package status turns a pipeline run into a summary for people and files.
package status

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dusk-indust/scaffold/internal/agent"
	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/orchestrator"
)

// StageInfo describes the last known state of a single stage.
type StageInfo struct {
	Stage  int                         `json:"stage"`
	Name   string                      `json:"name"`
	Status orchestrator.ProgressStatus `json:"status"`
}

// FileStatus is the quality outcome of one generated file.
type FileStatus struct {
	Path         string   `json:"path"`
	Score        float64  `json:"score"`
	Passed       bool     `json:"passed"`
	Attempts     int      `json:"attempts"`
	Regenerated  bool     `json:"regenerated,omitempty"`
	Failed       []string `json:"failedChecks,omitempty"`
	SyntaxErrors int      `json:"syntaxErrors,omitempty"`
}

// IssueStatus is a coherence issue in report form.
type IssueStatus struct {
	Kind        string `json:"kind"`
	Files       string `json:"files"`
	Description string `json:"description"`
}

// RunSummary is the report written after a run.
type RunSummary struct {
	RunID             string            `json:"runId"`
	Architecture      string            `json:"architecture"`
	StructureFallback bool              `json:"structureFallback"`
	FallbackReason    string            `json:"fallbackReason,omitempty"`
	Stages            []StageInfo       `json:"stages,omitempty"`
	Files             []FileStatus      `json:"files"`
	Passed            int               `json:"passed"`
	Failed            int               `json:"failed"`
	Tests             int               `json:"tests"`
	HasReadme         bool              `json:"hasReadme"`
	Entries           int               `json:"entries"`
	Graph             *graph.GraphStats `json:"graph,omitempty"`
	Issues            []IssueStatus     `json:"issues,omitempty"`
}

// Summarize builds a RunSummary from res. A nil res gives a zero summary.
func Summarize(res *orchestrator.Result) RunSummary {
	var s RunSummary
	if res == nil {
		return s
	}
	s.RunID = res.RunID
	s.Architecture = res.Plan.Architecture
	s.StructureFallback = res.StructureFallback
	if res.StructureReason != nil {
		s.FallbackReason = res.StructureReason.Error()
	}

	s.Files = make([]FileStatus, 0, len(res.Files))
	for _, f := range res.Files {
		fs := FileStatus{
			Path:        f.Path,
			Score:       f.Report.Score,
			Passed:      f.Report.Passed,
			Attempts:    f.Attempts,
			Regenerated: f.Regenerated,
			Failed:      f.Report.Failed(),
		}
		if f.Report.Syntax != nil {
			fs.SyntaxErrors = f.Report.Syntax.ErrorCount
		}
		if fs.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Files = append(s.Files, fs)
	}

	if res.Bundle != nil {
		s.Entries = res.Bundle.Len()
		for _, p := range res.Bundle.Paths() {
			switch {
			case p == agent.ReadmePath:
				s.HasReadme = true
			case agent.IsTestPath(p):
				s.Tests++
			}
		}
	}

	if res.Graph != nil {
		if st, err := res.Graph.Stats(context.Background()); err == nil {
			s.Graph = st
		}
	}

	for _, is := range res.Coherence {
		files := is.FileA
		if is.FileB != "" {
			files += ", " + is.FileB
		}
		s.Issues = append(s.Issues, IssueStatus{Kind: string(is.Kind), Files: files, Description: is.Description})
	}
	return s
}

// Format renders s as a plain-text report.
func (s RunSummary) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s (%s)\n", s.RunID, s.Architecture)
	if s.StructureFallback {
		fmt.Fprintf(&sb, "  structure: default layout (%s)\n", s.FallbackReason)
	}
	for _, st := range s.Stages {
		fmt.Fprintf(&sb, "  stage %d %-10s %s\n", st.Stage, st.Name, st.Status)
	}
	sb.WriteString("\nFiles:\n")
	for _, f := range s.Files {
		mark := "✓"
		if !f.Passed {
			mark = "✗"
		}
		fmt.Fprintf(&sb, "  %s %s  score %.2f  attempts %d", mark, f.Path, f.Score, f.Attempts)
		if len(f.Failed) > 0 {
			fmt.Fprintf(&sb, "  failed: %s", strings.Join(f.Failed, ", "))
		}
		if f.SyntaxErrors > 0 {
			fmt.Fprintf(&sb, "  syntax errors: %d", f.SyntaxErrors)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n%d passed, %d below threshold, %d tests, readme: %t, %d entries\n",
		s.Passed, s.Failed, s.Tests, s.HasReadme, s.Entries)
	if s.Graph != nil {
		fmt.Fprintf(&sb, "design graph: %d files, %d components, %d edges\n",
			s.Graph.FileCount, s.Graph.ComponentCount, s.Graph.EdgeCount)
	}

	if len(s.Issues) > 0 {
		sb.WriteString("\nCoherence issues:\n")
		for _, is := range s.Issues {
			fmt.Fprintf(&sb, "  [%s] %s\n", is.Kind, is.Description)
		}
	}
	return sb.String()
}

// Tracker records the latest status of every stage from a progress stream.
// It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	stages map[orchestrator.Stage]orchestrator.ProgressStatus
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{stages: make(map[orchestrator.Stage]orchestrator.ProgressStatus)}
}

// Observe records ev. Only stage-level events (Section equal to the stage
// name) change the stage status; per-file events are ignored.
func (t *Tracker) Observe(ev orchestrator.ProgressEvent) {
	if ev.Section != ev.Stage.String() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages[ev.Stage] = ev.Status
}

// Stages returns every stage in order, pending when never observed.
func (t *Tracker) Stages() []StageInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StageInfo, 0, 5)
	for s := orchestrator.StagePlanning; s <= orchestrator.StageDocs; s++ {
		st, ok := t.stages[s]
		if !ok {
			st = orchestrator.ProgressPending
		}
		out = append(out, StageInfo{Stage: int(s), Name: s.String(), Status: st})
	}
	return out
}

// NextStage returns the first stage that did not complete, or -1 when all
// did. A structure fallback counts as complete.
func (t *Tracker) NextStage() int {
	for _, st := range t.Stages() {
		if st.Status != orchestrator.ProgressComplete && st.Status != orchestrator.ProgressFallback {
			return st.Stage
		}
	}
	return -1
}
