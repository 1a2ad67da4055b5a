package graph

import (
	"crypto/sha256"
	"fmt"
)

// NodeType represents the kind of entity in the service dependency graph.
type NodeType string

const (
	NodeService  NodeType = "Service"
	NodeFile     NodeType = "File"
	NodeFunction NodeType = "Function"
	NodeResource NodeType = "Resource"
	NodeDemand   NodeType = "Demand"
)

// EdgeType represents a relationship between two nodes.
type EdgeType string

const (
	EdgeContains  EdgeType = "Contains"
	EdgeExposes   EdgeType = "Exposes"
	EdgeConsumes  EdgeType = "Consumes"
	EdgeDependsOn EdgeType = "DependsOn"
	EdgeCalls     EdgeType = "Calls"
)

// Well-known property keys used on Resource and Demand nodes.
const (
	PropHTTPMethod = "http_method"
	PropURL        = "url"
	PropHandler    = "handler"
	PropConvention = "convention"
	PropResolved   = "resolved"
	PropKind       = "kind"
)

// Node represents a source code entity in the service dependency graph.
type Node struct {
	ID         string            `json:"id"`
	Type       NodeType          `json:"type"`
	Name       string            `json:"name"`
	FilePath   string            `json:"file_path"`
	Line       int               `json:"line,omitempty"`
	Package    string            `json:"package,omitempty"`
	Language   string            `json:"language,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Edge represents a relationship between two nodes.
type Edge struct {
	ID         string            `json:"id"`
	Type       EdgeType          `json:"type"`
	SourceID   string            `json:"source_id"`
	TargetID   string            `json:"target_id"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Stats holds aggregate statistics about the graph.
type Stats struct {
	NodeCount   int64              `json:"node_count"`
	EdgeCount   int64              `json:"edge_count"`
	NodesByType map[NodeType]int64 `json:"nodes_by_type"`
	EdgesByType map[EdgeType]int64 `json:"edges_by_type"`
}

// NewNodeID generates a deterministic node ID from the type, file path, and name.
// The ID is a hex-encoded SHA-256 hash prefix to keep keys compact and collision-resistant.
func NewNodeID(nodeType, filePath, name string) string {
	raw := fmt.Sprintf("%s:%s:%s", nodeType, filePath, name)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:12])
}

// NewEdgeID generates a deterministic edge ID from the edge type and endpoints.
func NewEdgeID(edgeType EdgeType, sourceID, targetID string) string {
	return NewNodeID(string(edgeType), sourceID, targetID)
}
