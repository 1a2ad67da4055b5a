// Package graph defines the service dependency graph model and its
// persistence interface. Resources (endpoints a file exposes) and demands
// (endpoints a file calls into) become nodes; the linker turns them into
// Consumes and DependsOn edges between services.
package graph

import "context"

// Direction specifies the traversal direction for edge queries.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Both
)

// NodeFilter specifies criteria for querying nodes. Zero-valued fields match
// everything; Properties entries must all be present on a matching node.
type NodeFilter struct {
	Type       NodeType
	FilePath   string
	Package    string
	Properties map[string]string
}

// Store is the interface for graph persistence.
type Store interface {
	// AddNode inserts a new node into the graph.
	AddNode(ctx context.Context, node *Node) error

	// UpdateNode replaces an existing node (matched by ID).
	UpdateNode(ctx context.Context, node *Node) error

	// GetNode retrieves a single node by ID.
	GetNode(ctx context.Context, id string) (*Node, error)

	// QueryNodes returns all nodes matching the given filter.
	QueryNodes(ctx context.Context, filter NodeFilter) ([]*Node, error)

	// AddEdge inserts a new edge into the graph.
	AddEdge(ctx context.Context, edge *Edge) error

	// GetEdges returns edges connected to nodeID with the given type.
	// If edgeType is empty, all edge types are returned.
	GetEdges(ctx context.Context, nodeID string, edgeType EdgeType) ([]*Edge, error)

	// GetNeighbors returns nodes connected to nodeID via edges of the given
	// type in the specified direction.
	GetNeighbors(ctx context.Context, nodeID string, edgeType EdgeType, direction Direction) ([]*Node, error)

	// DeleteByFile removes all nodes (and their edges) associated with the
	// given file path. Supports incremental updates: everything a file
	// produced is deleted before the file is re-analyzed.
	DeleteByFile(ctx context.Context, filePath string) error

	// Stats returns aggregate statistics about the graph.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases resources held by the store.
	Close() error
}
