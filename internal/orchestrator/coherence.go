package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
)

// IssueKind classifies a coherence issue.
type IssueKind string

const (
	IssueVersionConflict      IssueKind = "version-conflict"
	IssueDependencyCycle      IssueKind = "dependency-cycle"
	IssueUnresolvedDependency IssueKind = "unresolved-dependency"
	IssueFailingDependency    IssueKind = "failing-dependency"
)

// CoherenceIssue is a cross-file inconsistency found after generation.
type CoherenceIssue struct {
	Kind        IssueKind
	FileA       string
	FileB       string // empty when the issue concerns one file
	Description string
}

// codeBlockRe matches fenced code blocks (``` ... ```).
var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// depVersionRe matches patterns like "Flask 2.3", "Go 1.22.3", "node v20.x",
// "PostgreSQL 16.1", or any word followed by an optional 'v' and a version number.
var depVersionRe = regexp.MustCompile(`(?i)\b([A-Za-z][A-Za-z0-9_.-]*)\s+v?(\d+\.\d+(?:\.\d+)?(?:\.x)?)\b`)

// pinRe matches requirement pins such as "flask==2.3.0" or "requests>=2.31".
var pinRe = regexp.MustCompile(`(?im)^\s*([A-Za-z][A-Za-z0-9_.-]*)\s*(?:==|>=|~=)\s*(\d+\.\d+(?:\.\d+)?)`)

// manifestExts are the files scanned for version mentions. Source files are
// skipped: numeric literals after identifiers look like versions.
var manifestExts = map[string]bool{
	".md": true, ".txt": true, ".toml": true, ".cfg": true, ".ini": true,
	".yml": true, ".yaml": true, ".json": true, ".mod": true,
}

func isManifest(p string) bool {
	base := strings.ToLower(path.Base(p))
	if base == "dockerfile" {
		return true
	}
	return manifestExts[path.Ext(base)]
}

// CheckVersions extracts dependency mentions with version numbers from the
// manifest and documentation entries and flags any dependency that appears
// with different versions in different files. Content inside fenced code
// blocks of markdown files is excluded to avoid false positives from examples.
func CheckVersions(entries []project.Entry) []CoherenceIssue {
	// depVersions maps normalized dependency name -> version -> list of paths.
	depVersions := make(map[string]map[string][]string)

	for _, e := range entries {
		if !isManifest(e.Path) {
			continue
		}
		text := e.Content
		if strings.HasSuffix(strings.ToLower(e.Path), ".md") {
			text = codeBlockRe.ReplaceAllString(text, "")
		}

		var matches [][]string
		matches = append(matches, depVersionRe.FindAllStringSubmatch(text, -1)...)
		matches = append(matches, pinRe.FindAllStringSubmatch(text, -1)...)

		// Deduplicate within a single file so the same mention doesn't
		// produce self-conflicts.
		seen := make(map[string]bool)
		for _, m := range matches {
			name := strings.ToLower(m[1])
			version := m[2]
			key := name + "@" + version
			if seen[key] {
				continue
			}
			seen[key] = true
			if depVersions[name] == nil {
				depVersions[name] = make(map[string][]string)
			}
			depVersions[name][version] = append(depVersions[name][version], e.Path)
		}
	}

	deps := make([]string, 0, len(depVersions))
	for d := range depVersions {
		deps = append(deps, d)
	}
	sort.Strings(deps)

	var issues []CoherenceIssue
	for _, dep := range deps {
		versions := depVersions[dep]
		if len(versions) <= 1 {
			continue
		}
		vs := make([]string, 0, len(versions))
		for v := range versions {
			vs = append(vs, v)
		}
		sort.Strings(vs)

		for i := 0; i < len(vs); i++ {
			for j := i + 1; j < len(vs); j++ {
				a, b := versions[vs[i]], versions[vs[j]]
				issues = append(issues, CoherenceIssue{
					Kind:  IssueVersionConflict,
					FileA: a[0],
					FileB: b[0],
					Description: fmt.Sprintf(
						"dependency %q has conflicting versions: %s (in %s) vs %s (in %s)",
						dep, vs[i], strings.Join(a, ", "), vs[j], strings.Join(b, ", "),
					),
				})
			}
		}
	}
	return issues
}

// CheckCoherence runs every cross-file check: version conflicts over the
// bundle, cycles and unresolved names in the design graph, and files that
// depend on a file which failed the quality gate.
func CheckCoherence(ctx context.Context, b *project.Bundle, files []project.GeneratedFile, g graph.Store, unresolved []string) ([]CoherenceIssue, error) {
	issues := CheckVersions(b.Entries())
	if g == nil {
		return issues, nil
	}

	if _, err := graph.Order(ctx, g); err != nil {
		if !errors.Is(err, graph.ErrCycle) {
			return issues, fmt.Errorf("coherence: order: %w", err)
		}
		issues = append(issues, CoherenceIssue{Kind: IssueDependencyCycle, Description: err.Error()})
	}

	for _, u := range unresolved {
		from, dep, _ := strings.Cut(u, " -> ")
		issues = append(issues, CoherenceIssue{
			Kind:        IssueUnresolvedDependency,
			FileA:       from,
			Description: fmt.Sprintf("%s depends on %q, which is not a generated file", from, dep),
		})
	}

	for _, f := range files {
		if f.Report.Passed {
			continue
		}
		impact, err := g.AssessImpact(ctx, []string{f.Path})
		if err != nil {
			return issues, fmt.Errorf("coherence: impact of %s: %w", f.Path, err)
		}
		for _, dependent := range impact.DirectlyAffected {
			issues = append(issues, CoherenceIssue{
				Kind:        IssueFailingDependency,
				FileA:       dependent,
				FileB:       f.Path,
				Description: fmt.Sprintf("%s depends on %s, which failed the quality gate (score %.2f)", dependent, f.Path, f.Report.Score),
			})
		}
	}
	return issues, nil
}
