package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/dusk-indust/scaffold/internal/quality"
)

// ErrCycle is returned by Order when the DEPENDS_ON edges form a cycle.
var ErrCycle = errors.New("graph: dependency cycle")

// Load inserts one file node per spec, one component node per main
// component, and a DEPENDS_ON edge for every dependency naming another spec.
// Dependencies that match no spec (external packages, typos) are returned
// as "path -> dependency" strings.
func Load(ctx context.Context, s Store, specs []project.FileSpec) ([]string, error) {
	known := make(map[string]bool, len(specs))
	for _, sp := range specs {
		known[sp.Path] = true
	}

	var unresolved []string
	for _, sp := range specs {
		lang := ""
		if l, ok := quality.LanguageForPath(sp.Path); ok {
			lang = string(l)
		}
		if err := s.AddFile(ctx, FileNode{Path: sp.Path, Language: lang, Description: sp.Description}); err != nil {
			return nil, fmt.Errorf("graph: add file %s: %w", sp.Path, err)
		}
		for _, name := range sp.MainComponents {
			c := ComponentNode{Name: name, FilePath: sp.Path}
			if err := s.AddComponent(ctx, c); err != nil {
				return nil, fmt.Errorf("graph: add component %s: %w", c.ID(), err)
			}
			if err := s.AddEdge(ctx, Edge{SourceID: sp.Path, TargetID: c.ID(), Kind: EdgeKindDefines}); err != nil {
				return nil, fmt.Errorf("graph: add edge: %w", err)
			}
		}
		for _, dep := range sp.Dependencies {
			dep = project.NormalizePath(dep)
			if dep == sp.Path {
				continue
			}
			if !known[dep] {
				unresolved = append(unresolved, sp.Path+" -> "+dep)
				continue
			}
			if err := s.AddEdge(ctx, Edge{SourceID: sp.Path, TargetID: dep, Kind: EdgeKindDependsOn}); err != nil {
				return nil, fmt.Errorf("graph: add edge: %w", err)
			}
		}
	}
	return unresolved, nil
}

// DependencyEdges returns only the file-to-file edges.
func DependencyEdges(ctx context.Context, s Store) ([]Edge, error) {
	all, err := s.GetAllEdges(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, e := range all {
		if e.Kind == EdgeKindDependsOn {
			out = append(out, e)
		}
	}
	return out, nil
}

// Order returns file paths so that every file comes after the files it
// depends on, ties broken by path. When the edges contain a cycle, the files
// on or behind it are appended in path order and ErrCycle is returned along
// with the full ordering.
func Order(ctx context.Context, s Store) ([]string, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := DependencyEdges(ctx, s)
	if err != nil {
		return nil, err
	}

	pending := make(map[string]int, len(files))
	dependents := make(map[string][]string)
	for _, f := range files {
		pending[f.Path] = 0
	}
	for _, e := range edges {
		if _, ok := pending[e.SourceID]; !ok {
			continue
		}
		if _, ok := pending[e.TargetID]; !ok {
			continue
		}
		pending[e.SourceID]++
		dependents[e.TargetID] = append(dependents[e.TargetID], e.SourceID)
	}

	var ready []string
	for p, n := range pending {
		if n == 0 {
			ready = append(ready, p)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(files))
	done := make(map[string]bool, len(files))
	for len(ready) > 0 {
		p := ready[0]
		ready = ready[1:]
		order = append(order, p)
		done[p] = true
		var next []string
		for _, d := range dependents[p] {
			pending[d]--
			if pending[d] == 0 {
				next = append(next, d)
			}
		}
		if len(next) > 0 {
			ready = append(ready, next...)
			slices.Sort(ready)
		}
	}

	if len(order) == len(files) {
		return order, nil
	}
	var rest []string
	for _, f := range files {
		if !done[f.Path] {
			rest = append(rest, f.Path)
		}
	}
	return append(order, rest...), fmt.Errorf("%w: %v", ErrCycle, rest)
}

// DirectDependencies returns the file nodes path depends on in one hop,
// sorted by path. A dependency without a file node is skipped.
func DirectDependencies(ctx context.Context, s Store, path string) ([]FileNode, error) {
	chains, err := s.GetDependencies(ctx, path, DirectionDownstream, 1)
	if err != nil {
		return nil, err
	}
	out := make([]FileNode, 0, len(chains))
	for _, c := range chains {
		f, err := s.GetFile(ctx, c.Nodes[len(c.Nodes)-1])
		if err != nil {
			return nil, err
		}
		if f != nil {
			out = append(out, *f)
		}
	}
	slices.SortFunc(out, func(a, b FileNode) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}
