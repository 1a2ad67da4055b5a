// Package query provides a declarative pattern-matching capability over
// parsed syntax trees. Callers submit a structural pattern and receive every
// match as a flat list of named captures in traversal order; correlation of
// captures into higher-level records is left to the caller.
package query

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Capture is a single named subtree match produced by running a pattern
// against a syntax tree. Captures are transient: they borrow the underlying
// tree and are consumed immediately during correlation, never persisted.
type Capture struct {
	// Name is the capture label from the pattern (without the leading @).
	Name string
	// Node is the matched subtree.
	Node *sitter.Node
	// Text is the source text covered by the matched subtree.
	Text string
	// StartByte and EndByte are the byte offsets of the match in the source.
	StartByte uint32
	EndByte   uint32
}

// Engine matches declarative structural patterns against syntax trees.
// Implementations may cache compiled patterns; the core depends only on this
// interface so any grammar/query backend can be substituted.
type Engine interface {
	// Matches runs the pattern against the tree rooted at root and returns
	// all captures in tree traversal order.
	Matches(root *sitter.Node, source []byte, pattern string) ([]Capture, error)
}

// TreeSitterEngine implements Engine using tree-sitter queries. Each pattern
// is compiled once per engine and cached. Query predicates such as #eq? are
// honored. The engine is safe for concurrent use.
type TreeSitterEngine struct {
	lang *sitter.Language

	mu       sync.Mutex
	compiled map[string]*sitter.Query
}

// NewEngine creates a query engine for the given language definition.
func NewEngine(lang *sitter.Language) *TreeSitterEngine {
	return &TreeSitterEngine{
		lang:     lang,
		compiled: make(map[string]*sitter.Query),
	}
}

// Matches implements Engine.
func (e *TreeSitterEngine) Matches(root *sitter.Node, source []byte, pattern string) ([]Capture, error) {
	q, err := e.query(pattern)
	if err != nil {
		return nil, err
	}

	// Cursors are cheap and not safe to share; one per call.
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	var captures []Capture
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		for _, c := range match.Captures {
			captures = append(captures, Capture{
				Name:      q.CaptureNameForId(c.Index),
				Node:      c.Node,
				Text:      c.Node.Content(source),
				StartByte: c.Node.StartByte(),
				EndByte:   c.Node.EndByte(),
			})
		}
	}
	return captures, nil
}

// query returns the compiled form of pattern, compiling and caching it on
// first use.
func (e *TreeSitterEngine) query(pattern string) (*sitter.Query, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if q, ok := e.compiled[pattern]; ok {
		return q, nil
	}
	q, err := sitter.NewQuery([]byte(pattern), e.lang)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	e.compiled[pattern] = q
	return q, nil
}

// Parse parses source into a syntax tree using a fresh parser for lang.
// The caller owns the returned tree and must Close it.
func Parse(ctx context.Context, lang *sitter.Language, source []byte) (*sitter.Tree, error) {
	p := NewParser(lang)
	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}
	return tree, nil
}
