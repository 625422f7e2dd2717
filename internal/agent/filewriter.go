package agent

import (
	"context"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
)

// FileWriter synthesizes one file per spec behind the quality gate.
type FileWriter struct {
	base
}

// NewFileWriter creates a FileWriter. By default a failing file gets one
// feedback regeneration (WithMaxRegenerations).
func NewFileWriter(b backend.TextBackend, opts ...Option) *FileWriter {
	return &FileWriter{base: newBase(RoleFileWriter, b, opts)}
}

// Write produces exactly one GeneratedFile for spec and spends at most
// 1+MaxRegenerations backend calls. Failed files are kept with their final
// report rather than dropped. The last regeneration is accepted whatever its
// score; earlier ones stop the loop as soon as they pass. deps are the
// planned files spec imports from and are described in every prompt.
func (w *FileWriter) Write(ctx context.Context, spec project.FileSpec, plan project.ArchitecturePlan, deps ...graph.FileNode) project.GeneratedFile {
	gf := project.GeneratedFile{Path: spec.Path}

	text, err := w.generate(ctx, backend.PhaseFile, filePrompt(spec, plan, deps), FileParams)
	gf.Attempts = 1
	if err != nil {
		w.logger.Printf("WARNING: file %s: %v", spec.Path, err)
		gf.Report = w.checker.CheckFile(spec.Path, "")
		return gf
	}
	gf.Content = Clean(text)
	gf.Report = w.checker.CheckFile(spec.Path, gf.Content)

	for i := 0; i < w.maxRegenerations && !gf.Report.Passed; i++ {
		if ctx.Err() != nil {
			break
		}
		prompt := regeneratePrompt(spec, plan, deps, gf.Content, gf.Report.Failed())
		text, err := w.generate(ctx, backend.PhaseRegenerate, prompt, RegenerateParams)
		gf.Attempts++
		if err != nil {
			w.logger.Printf("WARNING: regenerate %s: %v; keeping previous content", spec.Path, err)
			break
		}
		gf.Content = Clean(text)
		gf.Regenerated = true
		gf.Report = w.checker.CheckFile(spec.Path, gf.Content)
	}
	if !gf.Report.Passed {
		w.logger.Printf("WARNING: file %s accepted below quality threshold (score %.2f, failed %v)", spec.Path, gf.Report.Score, gf.Report.Failed())
	}
	return gf
}
