// Package graph holds the per-run design graph: one node per planned file,
// one node per named component, and the dependency edges the structure
// stage declared between them.
package graph

// --- Enums ---

// NodeKind classifies nodes in the design graph.
type NodeKind string

const (
	NodeKindFile      NodeKind = "file"
	NodeKindComponent NodeKind = "component"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	// EdgeKindDependsOn links a file to a file it depends on.
	EdgeKindDependsOn EdgeKind = "DEPENDS_ON"
	// EdgeKindDefines links a file to a component it defines.
	EdgeKindDefines EdgeKind = "DEFINES"
)

// --- Models ---

// FileNode represents a planned file.
type FileNode struct {
	Path        string `json:"path"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description"`
}

// ComponentNode represents a named component (class, function, module)
// that a file is expected to define.
type ComponentNode struct {
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
}

// ID returns the node ID used in edges.
func (c ComponentNode) ID() string {
	return c.FilePath + "#" + c.Name
}

// Edge represents a relationship between two nodes.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats summarizes a design graph.
type GraphStats struct {
	FileCount      int `json:"fileCount"`
	ComponentCount int `json:"componentCount"`
	EdgeCount      int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of nodes forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // node IDs in order
	Depth int      `json:"depth"`
}

// ImpactResult lists the files that depend on a set of files.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files that depend on a changed file
	TransitivelyAffected []string `json:"transitivelyAffected"` // full closure
	RiskScore            float64  `json:"riskScore"`            // 0.0-1.0, share of files affected
}
