package graph

import (
	"context"
	"io"
)

// Store is the interface for the design graph backend.
type Store interface {
	io.Closer

	// Write operations.
	AddFile(ctx context.Context, node FileNode) error
	AddComponent(ctx context.Context, node ComponentNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations.
	GetFile(ctx context.Context, path string) (*FileNode, error)
	Files(ctx context.Context) ([]FileNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Graph traversal.
	GetDependencies(ctx context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what depends on this?
	DirectionDownstream Direction = "downstream" // what does this depend on?
)
