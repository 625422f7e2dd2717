package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()
	b := project.NewBundle()
	b.Set("app/main.py", "print('hi')")
	b.Set("README.md", "# Demo\n\nText\n")

	m, err := WriteBundle(dir, b)
	require.NoError(t, err)
	require.Len(t, m.Files, 2)
	assert.Equal(t, FileEntry{Path: "app/main.py", Bytes: 11, Lines: 1}, m.Files[0])
	assert.Equal(t, 3, m.Files[1].Lines)

	data, err := os.ReadFile(filepath.Join(dir, "app", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))

	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, m.Files, got.Files)
}

func TestWriteBundle_UnsafePathWritesNothing(t *testing.T) {
	dir := t.TempDir()
	b := project.NewBundle()
	b.Set("ok.py", "x = 1")
	b.Set("../escape.py", "x = 2")

	_, err := WriteBundle(dir, b)
	require.ErrorIs(t, err, project.ErrInvalidPath)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateMermaid(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemStore()
	_, err := graph.Load(ctx, g, []project.FileSpec{
		{Path: "main.py", Dependencies: []string{"app/core/service.py"}},
		{Path: "app/core/service.py", MainComponents: []string{"Service"}},
	})
	require.NoError(t, err)

	out, err := GenerateMermaid(ctx, g)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	// Root files come first and are not wrapped in a subgraph.
	assert.Contains(t, out, "  N0[\"main.py\"]\n")
	assert.Contains(t, out, `subgraph N1["app/core"]`)
	assert.Contains(t, out, `N2["core/service.py"]`)
	assert.Contains(t, out, "N0 --> N2")
	assert.NotContains(t, out, "Service", "component nodes are not drawn")
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "a.py", shortPath("a.py"))
	assert.Equal(t, "app/a.py", shortPath("app/a.py"))
	assert.Equal(t, "core/a.py", shortPath("app/core/a.py"))
}
