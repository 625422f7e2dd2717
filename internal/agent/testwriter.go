package agent

import (
	"context"
	"path"
	"strings"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/project"
)

// TestWriter derives one test file per source file of a bundle.
type TestWriter struct {
	base
}

// NewTestWriter creates a TestWriter. Framework, coverage target and source
// extensions come from options. The pipeline fans WriteOne out over Targets.
func NewTestWriter(b backend.TextBackend, opts ...Option) *TestWriter {
	return &TestWriter{base: newBase(RoleTestWriter, b, opts)}
}

// TestTarget pairs a source file with the path of its test.
type TestTarget struct {
	Source   string
	TestPath string
	Content  string
}

// TestPathFor returns the test path for a source path: tests/test_<path>
// with every "/" replaced by "_".
func TestPathFor(source string) string {
	return "tests/test_" + strings.ReplaceAll(source, "/", "_")
}

// IsTestPath reports whether p already looks like a test file.
func IsTestPath(p string) bool {
	if strings.HasPrefix(p, "tests/") {
		return true
	}
	name := path.Base(p)
	if strings.HasPrefix(name, "test_") {
		return true
	}
	ext := path.Ext(name)
	return strings.HasSuffix(strings.TrimSuffix(name, ext), "_test")
}

// Targets lists the bundle entries that need a test, in bundle order.
func (w *TestWriter) Targets(b *project.Bundle) []TestTarget {
	var out []TestTarget
	for _, e := range b.Entries() {
		if !w.isSource(e.Path) || IsTestPath(e.Path) {
			continue
		}
		out = append(out, TestTarget{Source: e.Path, TestPath: TestPathFor(e.Path), Content: e.Content})
	}
	return out
}

func (w *TestWriter) isSource(p string) bool {
	ext := path.Ext(p)
	for _, want := range w.sourceExts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// WriteOne makes a single backend call for t and returns the cleaned test
// code. There is no retry.
func (w *TestWriter) WriteOne(ctx context.Context, t TestTarget) (string, error) {
	text, err := w.generate(ctx, backend.PhaseTests, testPrompt(t.Source, t.Content, w.framework, w.coverage), TestParams)
	if err != nil {
		return "", err
	}
	return Clean(text), nil
}
