package agent

import (
	"context"
	"strings"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/export"
	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
)

// ReadmePath is where the assembled documentation is stored.
const ReadmePath = "README.md"

// DocWriter assembles the project README.
type DocWriter struct {
	base
}

// NewDocWriter creates a DocWriter.
func NewDocWriter(b backend.TextBackend, opts ...Option) *DocWriter {
	return &DocWriter{base: newBase(RoleDocWriter, b, opts)}
}

// Write makes one backend call listing the bundle's paths. When g has
// dependency edges a Mermaid diagram of them is appended. g may be nil.
func (w *DocWriter) Write(ctx context.Context, plan project.ArchitecturePlan, b *project.Bundle, g graph.Store) (string, error) {
	text, err := w.generate(ctx, backend.PhaseDocs, docPrompt(plan, b.Paths()), DocParams)
	if err != nil {
		return "", err
	}
	readme := strings.TrimSpace(stripFences(text))

	if g != nil {
		edges, err := graph.DependencyEdges(ctx, g)
		if err == nil && len(edges) > 0 {
			diagram, err := export.GenerateMermaid(ctx, g)
			if err == nil {
				readme += "\n\n## File dependencies\n\n```mermaid\n" + diagram + "```\n"
			} else {
				w.logger.Printf("WARNING: dependency diagram: %v", err)
			}
		}
	}
	return readme, nil
}

// stripFences drops a single fence pair wrapping the whole reply, which
// some models add around markdown output.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return text
	}
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		return t[nl+1 : len(t)-3]
	}
	return text
}
