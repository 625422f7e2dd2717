package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPython = `"""Task service."""

import logging


def create_task(title: str) -> dict:
    """Create a task."""
    try:
        return {"title": title}
    except ValueError as exc:
        logging.error("bad title: %s", exc)
        raise
`

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantScore  float64
		wantPassed bool
		wantFailed []string
	}{
		{
			name:       "all checks pass",
			content:    goodPython,
			wantScore:  1.0,
			wantPassed: true,
		},
		{
			name:       "missing docstrings still passes at four of five",
			content:    strings.ReplaceAll(goodPython, `"""`, "#"),
			wantScore:  0.8,
			wantPassed: true,
			wantFailed: []string{CheckDocumentation},
		},
		{
			name:       "placeholder and no docs fails",
			content:    strings.ReplaceAll(goodPython, `"""`, "# TODO"),
			wantScore:  0.6,
			wantPassed: false,
			wantFailed: []string{CheckDocumentation, CheckNoPlaceholders},
		},
		{
			name:       "empty content",
			content:    "",
			wantScore:  0.2,
			wantPassed: false,
			wantFailed: []string{CheckDocumentation, CheckTypeAnnotations, CheckErrorHandling, CheckLength},
		},
		{
			name:       "FIXME counts as placeholder",
			content:    goodPython + "\n# FIXME later\n",
			wantScore:  0.8,
			wantPassed: true,
			wantFailed: []string{CheckNoPlaceholders},
		},
	}

	c := NewChecker()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Check(tt.content)
			assert.InDelta(t, tt.wantScore, r.Score, 1e-9)
			assert.Equal(t, tt.wantPassed, r.Passed)
			assert.Equal(t, tt.wantFailed, r.Failed())
			assert.Equal(t, DefaultThreshold, r.Threshold)
		})
	}
}

func TestChecker_TypeAnnotationPatterns(t *testing.T) {
	c := NewChecker()
	assert.True(t, c.Check("def f() -> int").HasTypeAnnotations)
	assert.True(t, c.Check("def f(name: str)").HasTypeAnnotations)
	assert.False(t, c.Check("def f():\n    pass").HasTypeAnnotations)
}

func TestChecker_Deterministic(t *testing.T) {
	c := NewChecker()
	inputs := []string{"", goodPython, "TODO", strings.Repeat("x", 101)}
	for _, in := range inputs {
		assert.Equal(t, c.Check(in), c.Check(in))
	}
}

func TestChecker_Options(t *testing.T) {
	c := NewChecker(WithThreshold(1.0), WithMinLength(10))
	r := c.Check(strings.ReplaceAll(goodPython, `"""`, "#"))
	assert.False(t, r.Passed)
	assert.Equal(t, 1.0, c.Threshold())

	// Out-of-range threshold is ignored.
	assert.Equal(t, DefaultThreshold, NewChecker(WithThreshold(2)).Threshold())

	assert.True(t, NewChecker(WithMinLength(2)).Check("abc").ReasonableLength)
}

func TestChecker_CheckFileSyntax(t *testing.T) {
	c := NewChecker(WithSyntaxInspector(NewSyntaxInspector()))

	r := c.CheckFile("app/service.py", goodPython)
	require.NotNil(t, r.Syntax)
	assert.Equal(t, LangPython, r.Syntax.Language)
	assert.True(t, r.Syntax.Clean())

	broken := c.CheckFile("main.go", "package main\n\nfunc main( {\n")
	require.NotNil(t, broken.Syntax)
	assert.True(t, broken.Syntax.Parsed)
	assert.Greater(t, broken.Syntax.ErrorCount, 0)
	assert.NotEmpty(t, broken.Syntax.ErrorLines)

	// Syntax never changes the score.
	assert.Equal(t, c.Check(goodPython).Score, r.Score)

	assert.Nil(t, c.CheckFile("README.md", "# readme").Syntax)
	assert.Nil(t, NewChecker().CheckFile("main.go", "package main").Syntax)
}

func TestLanguageForPath(t *testing.T) {
	tests := map[string]Language{
		"a.go":     LangGo,
		"b/c.PY":   LangPython,
		"d.ts":     LangTypeScript,
		"e.tsx":    LangTSX,
		"lib/f.rs": LangRust,
	}
	for p, want := range tests {
		got, ok := LanguageForPath(p)
		assert.True(t, ok, p)
		assert.Equal(t, want, got, p)
	}
	_, ok := LanguageForPath("notes.txt")
	assert.False(t, ok)
}
