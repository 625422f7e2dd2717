package graph

import (
	"context"
	"testing"

	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpecs() []project.FileSpec {
	return []project.FileSpec{
		{Path: "app/api.py", Description: "HTTP routes", MainComponents: []string{"router"}, Dependencies: []string{"app/service.py", "fastapi"}},
		{Path: "app/models.py", Description: "Entities", MainComponents: []string{"Task"}},
		{Path: "app/service.py", Description: "Use cases", Dependencies: []string{"./app/models.py", "app/service.py"}},
	}
}

func loaded(t *testing.T) *MemStore {
	t.Helper()
	s := NewMemStore()
	unresolved, err := Load(context.Background(), s, sampleSpecs())
	require.NoError(t, err)
	assert.Equal(t, []string{"app/api.py -> fastapi"}, unresolved)
	return s
}

func TestLoad_NodesAndEdges(t *testing.T) {
	s := loaded(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FileCount)
	assert.Equal(t, 2, stats.ComponentCount)
	// 2 DEFINES + 2 DEPENDS_ON; self-dependency skipped.
	assert.Equal(t, 4, stats.EdgeCount)

	f, err := s.GetFile(ctx, "app/api.py")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "python", f.Language)

	missing, err := s.GetFile(ctx, "nope.py")
	require.NoError(t, err)
	assert.Nil(t, missing)

	deps, err := DependencyEdges(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{SourceID: "app/api.py", TargetID: "app/service.py", Kind: EdgeKindDependsOn},
		{SourceID: "app/service.py", TargetID: "app/models.py", Kind: EdgeKindDependsOn},
	}, deps)
}

func TestMemStore_DuplicateEdgesIgnored(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	e := Edge{SourceID: "a", TargetID: "b", Kind: EdgeKindDependsOn}
	require.NoError(t, s.AddEdge(ctx, e))
	require.NoError(t, s.AddEdge(ctx, e))
	all, err := s.GetAllEdges(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetDependencies_Directions(t *testing.T) {
	s := loaded(t)
	ctx := context.Background()

	down, err := s.GetDependencies(ctx, "app/api.py", DirectionDownstream, 5)
	require.NoError(t, err)
	require.Len(t, down, 2)
	assert.Equal(t, []string{"app/api.py", "app/service.py"}, down[0].Nodes)
	assert.Equal(t, []string{"app/api.py", "app/service.py", "app/models.py"}, down[1].Nodes)
	assert.Equal(t, 2, down[1].Depth)

	up, err := s.GetDependencies(ctx, "app/models.py", DirectionUpstream, 1)
	require.NoError(t, err)
	require.Len(t, up, 1)
	assert.Equal(t, "app/service.py", up[0].Nodes[1])

	none, err := s.GetDependencies(ctx, "app/api.py", DirectionDownstream, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAssessImpact(t *testing.T) {
	s := loaded(t)
	res, err := s.AssessImpact(context.Background(), []string{"app/models.py"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/service.py"}, res.DirectlyAffected)
	assert.Equal(t, []string{"app/api.py", "app/service.py"}, res.TransitivelyAffected)
	assert.InDelta(t, 2.0/3.0, res.RiskScore, 1e-9)
}

func TestOrder_DependenciesFirst(t *testing.T) {
	s := loaded(t)
	order, err := Order(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/models.py", "app/service.py", "app/api.py"}, order)
}

func TestOrder_Cycle(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	_, err := Load(ctx, s, []project.FileSpec{
		{Path: "a.py", Dependencies: []string{"b.py"}},
		{Path: "b.py", Dependencies: []string{"a.py"}},
		{Path: "c.py"},
	})
	require.NoError(t, err)

	order, err := Order(ctx, s)
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, []string{"c.py", "a.py", "b.py"}, order)
}

func TestDirectDependencies(t *testing.T) {
	s := loaded(t)
	ctx := context.Background()

	deps, err := DirectDependencies(ctx, s, "app/api.py")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "app/service.py", deps[0].Path)
	assert.Equal(t, "Use cases", deps[0].Description)

	none, err := DirectDependencies(ctx, s, "app/models.py")
	require.NoError(t, err)
	assert.Empty(t, none)
}
