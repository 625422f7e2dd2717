package export

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/scaffold/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a graph store.
// Files are grouped by directory; DEPENDS_ON edges become arrows.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	files, err := store.Files(ctx)
	if err != nil {
		return "", fmt.Errorf("get files: %w", err)
	}

	edges, err := graph.DependencyEdges(ctx, store)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	groups := make(map[string][]string)
	for _, f := range files {
		dir := path.Dir(f.Path)
		groups[dir] = append(groups[dir], f.Path)
	}
	dirs := make([]string, 0, len(groups))
	for d := range groups {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, dir := range dirs {
		members := groups[dir]
		if dir == "." {
			for _, m := range members {
				sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(m), m))
			}
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(dir+"/"), dir))
		for _, m := range members {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(m), shortPath(m)))
		}
		sb.WriteString("  end\n")
	}

	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(e.SourceID), getID(e.TargetID)))
	}

	return sb.String(), nil
}

// shortPath returns the last 2 path segments for readability.
func shortPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
