// Package linker resolves cross-file relationships after indexing. It runs
// as a post-index phase over the whole graph: grouping files under service
// nodes, attaching exposed resources to their services, and matching demand
// nodes to the resource nodes they call into.
package linker

import (
	"context"
	"fmt"

	"github.com/unit-mesh/autodev-context/internal/graph"
)

// Linker resolves cross-file relationships in the dependency graph.
type Linker struct {
	store   graph.Store
	log     func(format string, args ...any)
	verbose bool
}

// NewLinker creates a new Linker.
func NewLinker(store graph.Store, logFn func(format string, args ...any), verbose bool) *Linker {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Linker{store: store, log: logFn, verbose: verbose}
}

// RunAll executes all linking phases in order.
func (l *Linker) RunAll(ctx context.Context) error {
	if l.verbose {
		l.log("Running topology linker...")
	}

	serviceCount, err := l.linkServices(ctx)
	if err != nil {
		return fmt.Errorf("link services: %w", err)
	}
	if l.verbose {
		l.log("  Linked %d services", serviceCount)
	}

	resourceCount, err := l.linkResources(ctx)
	if err != nil {
		return fmt.Errorf("link resources: %w", err)
	}
	if l.verbose {
		l.log("  Linked %d resources to services", resourceCount)
	}

	demandCount, err := l.linkDemands(ctx)
	if err != nil {
		return fmt.Errorf("link demands: %w", err)
	}
	if l.verbose {
		l.log("  Resolved %d demands against resources", demandCount)
	}

	if l.verbose {
		l.log("Topology linker complete.")
	}
	return nil
}
