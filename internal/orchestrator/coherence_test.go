package orchestrator

import (
	"context"
	"testing"

	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/dusk-indust/scaffold/internal/quality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(kv ...string) []project.Entry {
	var out []project.Entry
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, project.Entry{Path: kv[i], Content: kv[i+1]})
	}
	return out
}

func TestCheckVersions_MatchingVersions_NoIssues(t *testing.T) {
	issues := CheckVersions(entries(
		"README.md", "We use React 18.2 for the frontend.",
		"docs/ui.md", "The UI is built with React 18.2.",
	))
	assert.Empty(t, issues, "matching versions across files should produce no issues")
}

func TestCheckVersions_ConflictingVersions_OneIssue(t *testing.T) {
	issues := CheckVersions(entries(
		"README.md", "We use React 18.2 for the frontend.",
		"docs/ui.md", "The UI requires React 19.0 features.",
	))
	require.Len(t, issues, 1)
	assert.Equal(t, IssueVersionConflict, issues[0].Kind)
	assert.Equal(t, "README.md", issues[0].FileA)
	assert.Equal(t, "docs/ui.md", issues[0].FileB)
	assert.Contains(t, issues[0].Description, "react")
}

func TestCheckVersions_VersionInsideCodeBlock_NotFlagged(t *testing.T) {
	issues := CheckVersions(entries(
		"README.md", "We use React 18.2 for the frontend.",
		"docs/ui.md", "Example:\n```\nnpm install React 19.0\n```\nSome other text.",
	))
	assert.Empty(t, issues, "version numbers inside code blocks should not be flagged")
}

func TestCheckVersions_RequirementPins(t *testing.T) {
	issues := CheckVersions(entries(
		"requirements.txt", "flask==2.3.0\nrequests>=2.31\n",
		"README.md", "Built on Flask 2.2 and requests 2.31.",
	))
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, `"flask"`)
	assert.Equal(t, "README.md", issues[0].FileA)
	assert.Equal(t, "requirements.txt", issues[0].FileB)
}

func TestCheckVersions_SourceFilesIgnored(t *testing.T) {
	issues := CheckVersions(entries(
		"README.md", "Runs on Python 3.11.",
		"app/main.py", "RATIO = 1.5\n# Python 3.12 features\n",
	))
	assert.Empty(t, issues)
}

func TestCheckVersions_SameFileMentionedTwice_NoSelfConflict(t *testing.T) {
	issues := CheckVersions(entries(
		"README.md", "Node 20.1 is required. Install Node 20.1 first.",
	))
	assert.Empty(t, issues)
}

func TestCheckCoherence_GraphIssues(t *testing.T) {
	ctx := context.Background()
	specs := []project.FileSpec{
		{Path: "app/api.py", Dependencies: []string{"app/store.py"}},
		{Path: "app/store.py"},
		{Path: "app/cli.py", Dependencies: []string{"app/missing.py"}},
	}
	g := graph.NewMemStore()
	unresolved, err := graph.Load(ctx, g, specs)
	require.NoError(t, err)

	files := []project.GeneratedFile{
		{Path: "app/api.py", Report: quality.Report{Passed: true, Score: 1}},
		{Path: "app/store.py", Report: quality.Report{Passed: false, Score: 0.4}},
		{Path: "app/cli.py", Report: quality.Report{Passed: true, Score: 1}},
	}

	issues, err := CheckCoherence(ctx, project.NewBundle(), files, g, unresolved)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, IssueUnresolvedDependency, issues[0].Kind)
	assert.Equal(t, "app/cli.py", issues[0].FileA)
	assert.Contains(t, issues[0].Description, "app/missing.py")

	assert.Equal(t, IssueFailingDependency, issues[1].Kind)
	assert.Equal(t, "app/api.py", issues[1].FileA)
	assert.Equal(t, "app/store.py", issues[1].FileB)
}

func TestCheckCoherence_Cycle(t *testing.T) {
	ctx := context.Background()
	g := graph.NewMemStore()
	_, err := graph.Load(ctx, g, []project.FileSpec{
		{Path: "a.py", Dependencies: []string{"b.py"}},
		{Path: "b.py", Dependencies: []string{"a.py"}},
	})
	require.NoError(t, err)

	issues, err := CheckCoherence(ctx, project.NewBundle(), nil, g, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueDependencyCycle, issues[0].Kind)
}

func TestCheckCoherence_NilGraph(t *testing.T) {
	b := project.NewBundle()
	b.Set("README.md", "Uses Django 4.2.")
	b.Set("docs/setup.md", "Install Django 5.0.")

	issues, err := CheckCoherence(context.Background(), b, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueVersionConflict, issues[0].Kind)
}
