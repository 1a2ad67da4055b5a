// Package embedded implements graph.Store on top of an embedded BadgerDB.
// Nodes and edges are JSON values under typed key prefixes; secondary index
// keys give prefix-scan lookup by node type, file path, package, and edge
// endpoint without a full scan.
package embedded

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/unit-mesh/autodev-context/internal/graph"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixNode           = "n:"
	prefixEdge           = "e:"
	prefixIdxType        = "idx:type:"
	prefixIdxFile        = "idx:file:"
	prefixIdxPkg         = "idx:pkg:"
	prefixIdxEdge        = "idx:edge:"
	prefixIdxReverseEdge = "idx:redge:"
)

// Store implements graph.Store using BadgerDB.
type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) a BadgerDB-backed graph store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

func nodeKey(id string) []byte { return []byte(prefixNode + id) }
func edgeKey(id string) []byte { return []byte(prefixEdge + id) }

func indexTypeKey(nodeType graph.NodeType, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixIdxType, nodeType, id))
}

func indexFileKey(filePath, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixIdxFile, filePath, id))
}

func indexPkgKey(pkg, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixIdxPkg, pkg, id))
}

func indexEdgeKey(sourceID string, edgeType graph.EdgeType, edgeID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s", prefixIdxEdge, sourceID, edgeType, edgeID))
}

func indexReverseEdgeKey(targetID string, edgeType graph.EdgeType, edgeID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s", prefixIdxReverseEdge, targetID, edgeType, edgeID))
}

// buildEdgeIndexPrefix returns the scan prefix for a node's edge index. An
// empty edgeType matches every edge type for the node.
func buildEdgeIndexPrefix(base, nodeID string, edgeType graph.EdgeType) []byte {
	if edgeType == "" {
		return []byte(fmt.Sprintf("%s%s:", base, nodeID))
	}
	return []byte(fmt.Sprintf("%s%s:%s:", base, nodeID, edgeType))
}

func (s *Store) AddNode(_ context.Context, node *graph.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(nodeKey(node.ID), data); err != nil {
			return err
		}
		if err := txn.Set(indexTypeKey(node.Type, node.ID), nil); err != nil {
			return err
		}
		if node.FilePath != "" {
			if err := txn.Set(indexFileKey(node.FilePath, node.ID), nil); err != nil {
				return err
			}
		}
		if node.Package != "" {
			if err := txn.Set(indexPkgKey(node.Package, node.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) UpdateNode(_ context.Context, node *graph.Node) error {
	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		// Read existing node to clean up old indexes if fields changed.
		old, err := getNodeInTxn(txn, node.ID)
		if err != nil {
			return fmt.Errorf("get existing node for update: %w", err)
		}
		if old.Type != node.Type {
			_ = txn.Delete(indexTypeKey(old.Type, old.ID))
		}
		if old.FilePath != node.FilePath && old.FilePath != "" {
			_ = txn.Delete(indexFileKey(old.FilePath, old.ID))
		}
		if old.Package != node.Package && old.Package != "" {
			_ = txn.Delete(indexPkgKey(old.Package, old.ID))
		}
		if err := txn.Set(nodeKey(node.ID), data); err != nil {
			return err
		}
		if err := txn.Set(indexTypeKey(node.Type, node.ID), nil); err != nil {
			return err
		}
		if node.FilePath != "" {
			if err := txn.Set(indexFileKey(node.FilePath, node.ID), nil); err != nil {
				return err
			}
		}
		if node.Package != "" {
			if err := txn.Set(indexPkgKey(node.Package, node.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetNode(_ context.Context, id string) (*graph.Node, error) {
	var node *graph.Node
	err := s.db.View(func(txn *badger.Txn) error {
		n, err := getNodeInTxn(txn, id)
		if err != nil {
			return err
		}
		node = n
		return nil
	})
	return node, err
}

func getNodeInTxn(txn *badger.Txn, id string) (*graph.Node, error) {
	item, err := txn.Get(nodeKey(id))
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	var node graph.Node
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &node)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal node %s: %w", id, err)
	}
	return &node, nil
}

func (s *Store) QueryNodes(_ context.Context, filter graph.NodeFilter) ([]*graph.Node, error) {
	var results []*graph.Node
	err := s.db.View(func(txn *badger.Txn) error {
		var nodeIDs []string
		var useFullScan bool
		var err error

		// Pick the most selective index available for the filter.
		switch {
		case filter.FilePath != "":
			nodeIDs, err = scanIndexPrefix(txn, []byte(prefixIdxFile+filter.FilePath+":"))
		case filter.Type != "":
			nodeIDs, err = scanIndexPrefix(txn, []byte(fmt.Sprintf("%s%s:", prefixIdxType, filter.Type)))
		case filter.Package != "":
			nodeIDs, err = scanIndexPrefix(txn, []byte(prefixIdxPkg+filter.Package+":"))
		default:
			useFullScan = true
		}
		if err != nil {
			return err
		}

		if useFullScan {
			return scanNodes(txn, func(node *graph.Node) bool {
				if matchesFilter(node, filter) {
					results = append(results, node)
				}
				return true
			})
		}
		for _, id := range nodeIDs {
			node, err := getNodeInTxn(txn, id)
			if err != nil {
				continue // index entry for deleted node; skip
			}
			if matchesFilter(node, filter) {
				results = append(results, node)
			}
		}
		return nil
	})
	return results, err
}

func (s *Store) AddEdge(_ context.Context, edge *graph.Edge) error {
	data, err := json.Marshal(edge)
	if err != nil {
		return fmt.Errorf("marshal edge: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(edgeKey(edge.ID), data); err != nil {
			return err
		}
		if err := txn.Set(indexEdgeKey(edge.SourceID, edge.Type, edge.ID), nil); err != nil {
			return err
		}
		return txn.Set(indexReverseEdgeKey(edge.TargetID, edge.Type, edge.ID), nil)
	})
}

func getEdgeInTxn(txn *badger.Txn, id string) (*graph.Edge, error) {
	item, err := txn.Get(edgeKey(id))
	if err != nil {
		return nil, fmt.Errorf("get edge %s: %w", id, err)
	}
	var edge graph.Edge
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &edge)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal edge %s: %w", id, err)
	}
	return &edge, nil
}

func deleteEdgeInTxn(txn *badger.Txn, id string) error {
	edge, err := getEdgeInTxn(txn, id)
	if err != nil {
		return err
	}
	_ = txn.Delete(indexEdgeKey(edge.SourceID, edge.Type, edge.ID))
	_ = txn.Delete(indexReverseEdgeKey(edge.TargetID, edge.Type, edge.ID))
	return txn.Delete(edgeKey(id))
}

func (s *Store) GetEdges(_ context.Context, nodeID string, edgeType graph.EdgeType) ([]*graph.Edge, error) {
	seen := make(map[string]struct{})
	var results []*graph.Edge

	err := s.db.View(func(txn *badger.Txn) error {
		fwdIDs, err := scanIndexPrefix(txn, buildEdgeIndexPrefix(prefixIdxEdge, nodeID, edgeType))
		if err != nil {
			return err
		}
		revIDs, err := scanIndexPrefix(txn, buildEdgeIndexPrefix(prefixIdxReverseEdge, nodeID, edgeType))
		if err != nil {
			return err
		}
		for _, eid := range append(fwdIDs, revIDs...) {
			if _, ok := seen[eid]; ok {
				continue
			}
			seen[eid] = struct{}{}
			e, err := getEdgeInTxn(txn, eid)
			if err != nil {
				continue
			}
			results = append(results, e)
		}
		return nil
	})
	return results, err
}

func (s *Store) GetNeighbors(_ context.Context, nodeID string, edgeType graph.EdgeType, direction graph.Direction) ([]*graph.Node, error) {
	var results []*graph.Node
	err := s.db.View(func(txn *badger.Txn) error {
		seen := make(map[string]struct{})

		// Outgoing: nodeID is source -> follow forward index -> neighbor is target.
		if direction == graph.Outgoing || direction == graph.Both {
			edgeIDs, err := scanIndexPrefix(txn, buildEdgeIndexPrefix(prefixIdxEdge, nodeID, edgeType))
			if err != nil {
				return err
			}
			for _, eid := range edgeIDs {
				e, err := getEdgeInTxn(txn, eid)
				if err != nil {
					continue
				}
				if _, ok := seen[e.TargetID]; ok {
					continue
				}
				seen[e.TargetID] = struct{}{}
				n, err := getNodeInTxn(txn, e.TargetID)
				if err != nil {
					continue
				}
				results = append(results, n)
			}
		}

		// Incoming: nodeID is target -> follow reverse index -> neighbor is source.
		if direction == graph.Incoming || direction == graph.Both {
			edgeIDs, err := scanIndexPrefix(txn, buildEdgeIndexPrefix(prefixIdxReverseEdge, nodeID, edgeType))
			if err != nil {
				return err
			}
			for _, eid := range edgeIDs {
				e, err := getEdgeInTxn(txn, eid)
				if err != nil {
					continue
				}
				if _, ok := seen[e.SourceID]; ok {
					continue
				}
				seen[e.SourceID] = struct{}{}
				n, err := getNodeInTxn(txn, e.SourceID)
				if err != nil {
					continue
				}
				results = append(results, n)
			}
		}
		return nil
	})
	return results, err
}

func (s *Store) DeleteByFile(_ context.Context, filePath string) error {
	// Collect node IDs first; deleting a node also deletes its edges, which
	// mutates the index being scanned.
	var nodeIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := scanIndexPrefix(txn, []byte(prefixIdxFile+filePath+":"))
		if err != nil {
			return err
		}
		nodeIDs = ids
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range nodeIDs {
		err := s.db.Update(func(txn *badger.Txn) error {
			return deleteNodeInTxn(txn, id)
		})
		if err != nil {
			return fmt.Errorf("delete node %s for file %s: %w", id, filePath, err)
		}
	}
	return nil
}

// deleteNodeInTxn removes a node, its index entries, and all its edges.
func deleteNodeInTxn(txn *badger.Txn, id string) error {
	node, err := getNodeInTxn(txn, id)
	if err != nil {
		return err
	}
	fwdIDs, err := scanIndexPrefix(txn, []byte(prefixIdxEdge+id+":"))
	if err != nil {
		return err
	}
	for _, eid := range fwdIDs {
		if err := deleteEdgeInTxn(txn, eid); err != nil {
			return err
		}
	}
	revIDs, err := scanIndexPrefix(txn, []byte(prefixIdxReverseEdge+id+":"))
	if err != nil {
		return err
	}
	for _, eid := range revIDs {
		if err := deleteEdgeInTxn(txn, eid); err != nil {
			return err
		}
	}
	_ = txn.Delete(indexTypeKey(node.Type, id))
	if node.FilePath != "" {
		_ = txn.Delete(indexFileKey(node.FilePath, id))
	}
	if node.Package != "" {
		_ = txn.Delete(indexPkgKey(node.Package, id))
	}
	return txn.Delete(nodeKey(id))
}

func (s *Store) Stats(_ context.Context) (*graph.Stats, error) {
	stats := &graph.Stats{
		NodesByType: make(map[graph.NodeType]int64),
		EdgesByType: make(map[graph.EdgeType]int64),
	}
	err := s.db.View(func(txn *badger.Txn) error {
		if err := scanNodes(txn, func(node *graph.Node) bool {
			stats.NodeCount++
			stats.NodesByType[node.Type]++
			return true
		}); err != nil {
			return err
		}
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixEdge)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.Valid(); it.Next() {
			var edge graph.Edge
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &edge)
			})
			if err != nil {
				continue
			}
			stats.EdgeCount++
			stats.EdgesByType[edge.Type]++
		}
		return nil
	})
	return stats, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// scanIndexPrefix collects the trailing ID segment of every index key under
// prefix. Index keys carry no value; the ID is the last colon-delimited
// segment, so a scan without an edge type still yields bare edge IDs.
func scanIndexPrefix(txn *badger.Txn, prefix []byte) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.Valid(); it.Next() {
		key := string(it.Item().Key())
		if idx := strings.LastIndex(key, ":"); idx >= 0 && idx < len(key)-1 {
			ids = append(ids, key[idx+1:])
		}
	}
	return ids, nil
}

// scanNodes iterates every node value; the visitor returns false to stop early.
func scanNodes(txn *badger.Txn, visit func(*graph.Node) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixNode)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		var node graph.Node
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		})
		if err != nil {
			continue
		}
		if !visit(&node) {
			return nil
		}
	}
	return nil
}

func matchesFilter(node *graph.Node, filter graph.NodeFilter) bool {
	if filter.Type != "" && node.Type != filter.Type {
		return false
	}
	if filter.FilePath != "" && node.FilePath != filter.FilePath {
		return false
	}
	if filter.Package != "" && node.Package != filter.Package {
		return false
	}
	for k, v := range filter.Properties {
		if node.Properties[k] != v {
			return false
		}
	}
	return true
}
