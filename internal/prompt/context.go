// Package prompt assembles LLM context from the topology graph and drives
// the explain agent. Context builders render graph slices as compact text
// blocks suitable for a chat prompt.
package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/unit-mesh/autodev-context/internal/graph"
)

// ContextBuilder renders slices of the topology graph as prompt text.
type ContextBuilder struct {
	store graph.Store
}

// NewContextBuilder creates a context builder over the given store.
func NewContextBuilder(store graph.Store) *ContextBuilder {
	return &ContextBuilder{store: store}
}

// BuildOverviewContext summarizes the whole topology: services, their
// exposed resources, and resolved cross-service dependencies.
func (b *ContextBuilder) BuildOverviewContext(ctx context.Context) (string, error) {
	stats, err := b.store.Stats(ctx)
	if err != nil {
		return "", fmt.Errorf("graph stats: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("## Topology overview\n")
	fmt.Fprintf(&sb, "Graph: %d nodes, %d edges. ", stats.NodeCount, stats.EdgeCount)
	fmt.Fprintf(&sb, "%d services, %d files, %d resources, %d demands.\n",
		stats.NodesByType[graph.NodeService],
		stats.NodesByType[graph.NodeFile],
		stats.NodesByType[graph.NodeResource],
		stats.NodesByType[graph.NodeDemand])

	services, err := b.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeService})
	if err != nil {
		return "", fmt.Errorf("query services: %w", err)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })

	for _, svc := range services {
		fmt.Fprintf(&sb, "\n### Service: %s\n", svc.Name)

		resources, err := b.store.GetNeighbors(ctx, svc.ID, graph.EdgeExposes, graph.Outgoing)
		if err == nil && len(resources) > 0 {
			sb.WriteString("Exposes:\n")
			sort.Slice(resources, func(i, j int) bool { return resources[i].Name < resources[j].Name })
			for _, res := range resources {
				fmt.Fprintf(&sb, "- %s (%s)\n", res.Name, res.FilePath)
			}
		}

		deps, err := b.store.GetNeighbors(ctx, svc.ID, graph.EdgeDependsOn, graph.Outgoing)
		if err == nil && len(deps) > 0 {
			names := make([]string, 0, len(deps))
			for _, dep := range deps {
				names = append(names, dep.Name)
			}
			sort.Strings(names)
			fmt.Fprintf(&sb, "Depends on: %s\n", strings.Join(names, ", "))
		}
	}

	return sb.String(), nil
}

// BuildServiceContext renders one service's files, resources, and demands.
func (b *ContextBuilder) BuildServiceContext(ctx context.Context, serviceName string) (string, error) {
	services, err := b.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeService})
	if err != nil {
		return "", fmt.Errorf("query services: %w", err)
	}
	var svc *graph.Node
	for _, s := range services {
		if strings.EqualFold(s.Name, serviceName) {
			svc = s
			break
		}
	}
	if svc == nil {
		return fmt.Sprintf("No indexed service named %q found.", serviceName), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Service: %s\n", svc.Name)

	files, err := b.store.GetNeighbors(ctx, svc.ID, graph.EdgeContains, graph.Outgoing)
	if err == nil && len(files) > 0 {
		sort.Slice(files, func(i, j int) bool { return files[i].FilePath < files[j].FilePath })
		sb.WriteString("Files:\n")
		for _, f := range files {
			fmt.Fprintf(&sb, "- %s\n", f.FilePath)
		}
	}

	resources, err := b.store.GetNeighbors(ctx, svc.ID, graph.EdgeExposes, graph.Outgoing)
	if err == nil && len(resources) > 0 {
		sb.WriteString("Resources:\n")
		for _, res := range resources {
			fmt.Fprintf(&sb, "- %s handled by %s (%s)\n",
				res.Name, res.Properties[graph.PropHandler], res.FilePath)
		}
	}

	return sb.String(), nil
}

// BuildDemandContext lists demands touching the given URL, including whether
// each one has been resolved to a resource.
func (b *ContextBuilder) BuildDemandContext(ctx context.Context, url string) (string, error) {
	demands, err := b.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeDemand})
	if err != nil {
		return "", fmt.Errorf("query demands: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Demands for %s\n", url)
	found := false
	for _, dem := range demands {
		if !strings.Contains(dem.Properties[graph.PropURL], url) {
			continue
		}
		found = true
		status := "unresolved"
		if dem.Properties[graph.PropResolved] == "true" {
			status = "resolved"
		}
		caller := dem.Properties[graph.PropHandler]
		if caller == "" {
			caller = "(module level)"
		}
		fmt.Fprintf(&sb, "- %s from %s in %s [%s]\n", dem.Name, caller, dem.FilePath, status)

		targets, err := b.store.GetNeighbors(ctx, dem.ID, graph.EdgeConsumes, graph.Outgoing)
		if err == nil {
			for _, res := range targets {
				fmt.Fprintf(&sb, "  -> consumes %s (%s)\n", res.Name, res.FilePath)
			}
		}
	}
	if !found {
		return fmt.Sprintf("No demands found for %s.", url), nil
	}
	return sb.String(), nil
}
