package linker

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/unit-mesh/autodev-context/internal/graph"
)

// linkServices ensures each top-level directory group has a Service node and
// creates Contains edges from services to their file nodes.
func (l *Linker) linkServices(ctx context.Context) (int, error) {
	allNodes, err := l.store.QueryNodes(ctx, graph.NodeFilter{})
	if err != nil {
		return 0, err
	}

	existingServices := make(map[string]*graph.Node)
	for _, n := range allNodes {
		if n.Type == graph.NodeService {
			existingServices[n.Name] = n
		}
	}

	fileGroups := make(map[string][]*graph.Node)
	for _, n := range allNodes {
		if n.Type != graph.NodeFile {
			continue
		}
		group := topDir(n.FilePath)
		if group == "" {
			continue
		}
		fileGroups[group] = append(fileGroups[group], n)
	}

	linked := 0
	for group, files := range fileGroups {
		svc, exists := existingServices[group]
		if !exists {
			svc = &graph.Node{
				ID:   graph.NewNodeID(string(graph.NodeService), group, group),
				Type: graph.NodeService,
				Name: group,
				Properties: map[string]string{
					graph.PropKind: "auto_detected",
				},
			}
			if err := l.store.AddNode(ctx, svc); err != nil {
				if l.verbose {
					l.log("  Warning: add auto-detected service %s: %v", group, err)
				}
				continue
			}
			existingServices[group] = svc
		}

		for _, fileNode := range files {
			edge := &graph.Edge{
				ID:       graph.NewEdgeID(graph.EdgeContains, svc.ID, fileNode.ID),
				Type:     graph.EdgeContains,
				SourceID: svc.ID,
				TargetID: fileNode.ID,
			}
			if err := l.store.AddEdge(ctx, edge); err != nil {
				continue
			}
		}
		linked++
	}

	return linked, nil
}

// linkResources creates Exposes edges from each service to the resource
// nodes extracted from its files.
func (l *Linker) linkResources(ctx context.Context) (int, error) {
	resources, err := l.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeResource})
	if err != nil {
		return 0, err
	}
	if len(resources) == 0 {
		return 0, nil
	}

	services, err := l.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeService})
	if err != nil {
		return 0, err
	}
	serviceByGroup := make(map[string]*graph.Node)
	for _, svc := range services {
		serviceByGroup[svc.Name] = svc
	}

	linked := 0
	for _, res := range resources {
		svc := serviceByGroup[topDir(res.FilePath)]
		if svc == nil {
			continue
		}
		edge := &graph.Edge{
			ID:       graph.NewEdgeID(graph.EdgeExposes, svc.ID, res.ID),
			Type:     graph.EdgeExposes,
			SourceID: svc.ID,
			TargetID: res.ID,
		}
		if err := l.store.AddEdge(ctx, edge); err != nil {
			continue
		}
		linked++
	}
	return linked, nil
}

// topDir extracts the top-level directory from a relative file path.
// For "web/pages/api/users.ts" it returns "web"; a root-level file
// returns "(root)".
func topDir(filePath string) string {
	if filePath == "" {
		return ""
	}
	parts := strings.SplitN(filepath.ToSlash(filePath), "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "(root)"
	}
	if len(parts) == 1 {
		return "(root)"
	}
	return parts[0]
}
