package graph

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu         sync.RWMutex
	files      map[string]FileNode
	components map[string]ComponentNode // key: ComponentNode.ID()
	edges      []Edge
	edgeSet    map[Edge]bool
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		files:      make(map[string]FileNode),
		components: make(map[string]ComponentNode),
		edgeSet:    make(map[Edge]bool),
	}
}

// AddFile stores a file node keyed by its path.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddComponent stores a component node keyed by its ID.
func (m *MemStore) AddComponent(_ context.Context, node ComponentNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[node.ID()] = node
	return nil
}

// AddEdge appends an edge. Duplicate edges are ignored.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edgeSet[edge] {
		return nil
	}
	m.edgeSet[edge] = true
	m.edges = append(m.edges, edge)
	return nil
}

// GetFile returns the file node for the given path, or nil if not found.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// Files returns every file node sorted by path.
func (m *MemStore) Files(_ context.Context) ([]FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FileNode, 0, len(m.files))
	for _, f := range m.files {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b FileNode) int { return cmp.Compare(a.Path, b.Path) })
	return out, nil
}

// GetAllEdges returns a copy of all edges in insertion order.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// GetDependencies performs a BFS on DEPENDS_ON edges from nodeID in the
// given direction, up to maxDepth hops. It returns one DependencyChain per
// reachable node.
func (m *MemStore) GetDependencies(_ context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state: each entry tracks the path from nodeID to the current node.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{nodeID: true}
	queue := []bfsEntry{{id: nodeID, path: []string{nodeID}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns IDs reachable from id in one DEPENDS_ON hop.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	var result []string
	for _, e := range m.edges {
		if e.Kind != EdgeKindDependsOn {
			continue
		}
		switch direction {
		case DirectionDownstream:
			// id depends on e.TargetID
			if e.SourceID == id {
				result = append(result, e.TargetID)
			}
		case DirectionUpstream:
			// e.SourceID depends on id
			if e.TargetID == id {
				result = append(result, e.SourceID)
			}
		}
	}
	return result
}

// AssessImpact returns the files that depend, directly or transitively, on
// any of changedFiles. A DEPENDS_ON edge with SourceID=A, TargetID=B means
// "A depends on B", so A is affected when B changes.
func (m *MemStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	changedSet := make(map[string]bool, len(changedFiles))
	for _, f := range changedFiles {
		changedSet[f] = true
	}

	directSet := make(map[string]bool)
	for _, e := range m.edges {
		if e.Kind != EdgeKindDependsOn {
			continue
		}
		if changedSet[e.TargetID] && !changedSet[e.SourceID] {
			directSet[e.SourceID] = true
		}
	}

	allAffected := make(map[string]bool, len(directSet))
	frontier := make(map[string]bool, len(directSet))
	for k := range directSet {
		allAffected[k] = true
		frontier[k] = true
	}

	for len(frontier) > 0 {
		nextFrontier := make(map[string]bool)
		for _, e := range m.edges {
			if e.Kind != EdgeKindDependsOn {
				continue
			}
			if frontier[e.TargetID] && !changedSet[e.SourceID] && !allAffected[e.SourceID] {
				allAffected[e.SourceID] = true
				nextFrontier[e.SourceID] = true
			}
		}
		frontier = nextFrontier
	}

	transitivelyAffected := setToSlice(allAffected)

	var riskScore float64
	if len(m.files) > 0 {
		riskScore = float64(len(transitivelyAffected)) / float64(len(m.files))
	}

	return &ImpactResult{
		DirectlyAffected:     setToSlice(directSet),
		TransitivelyAffected: transitivelyAffected,
		RiskScore:            riskScore,
	}, nil
}

// Stats returns counts of all node and edge types in the graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		FileCount:      len(m.files),
		ComponentCount: len(m.components),
		EdgeCount:      len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// setToSlice converts a string bool map to a sorted slice.
func setToSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
