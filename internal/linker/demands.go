package linker

import (
	"context"
	"regexp"
	"strings"

	"github.com/unit-mesh/autodev-context/internal/graph"
)

// linkDemands matches Demand nodes to Resource nodes with the same HTTP
// method and a compatible URL, creating Consumes edges and service-level
// DependsOn edges. Matched demands are marked resolved.
func (l *Linker) linkDemands(ctx context.Context) (int, error) {
	demands, err := l.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeDemand})
	if err != nil {
		return 0, err
	}
	if len(demands) == 0 {
		return 0, nil
	}

	resources, err := l.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeResource})
	if err != nil {
		return 0, err
	}
	if len(resources) == 0 {
		return 0, nil
	}

	// Index resources by method, then by normalized URL.
	resourceIndex := make(map[string]map[string]*graph.Node)
	for _, res := range resources {
		method := res.Properties[graph.PropHTTPMethod]
		url := res.Properties[graph.PropURL]
		if method == "" || url == "" {
			continue
		}
		byURL := resourceIndex[method]
		if byURL == nil {
			byURL = make(map[string]*graph.Node)
			resourceIndex[method] = byURL
		}
		byURL[normalizeURLPath(url)] = res
	}

	services, err := l.store.QueryNodes(ctx, graph.NodeFilter{Type: graph.NodeService})
	if err != nil {
		return 0, err
	}
	serviceByGroup := make(map[string]*graph.Node)
	for _, svc := range services {
		serviceByGroup[svc.Name] = svc
	}

	serviceDeps := make(map[string]bool)
	resolved := 0

	for _, demand := range demands {
		targetURL := demand.Properties[graph.PropURL]
		if targetURL == "" {
			continue
		}
		method := demand.Properties[graph.PropHTTPMethod]

		res := matchResource(normalizeURLPath(targetURL), resourceIndex[method])
		if res == nil {
			continue
		}

		consumeEdge := &graph.Edge{
			ID:       graph.NewEdgeID(graph.EdgeConsumes, demand.ID, res.ID),
			Type:     graph.EdgeConsumes,
			SourceID: demand.ID,
			TargetID: res.ID,
			Properties: map[string]string{
				graph.PropResolved: "true",
			},
		}
		if err := l.store.AddEdge(ctx, consumeEdge); err != nil {
			continue
		}

		if demand.Properties == nil {
			demand.Properties = make(map[string]string)
		}
		demand.Properties[graph.PropResolved] = "true"
		if err := l.store.UpdateNode(ctx, demand); err != nil && l.verbose {
			l.log("  Warning: mark demand %s resolved: %v", demand.ID, err)
		}

		// Cross-service call: create a service-level DependsOn edge.
		callerSvc := serviceByGroup[topDir(demand.FilePath)]
		targetSvc := serviceByGroup[topDir(res.FilePath)]
		if callerSvc != nil && targetSvc != nil && callerSvc.ID != targetSvc.ID {
			depKey := callerSvc.ID + ">" + targetSvc.ID
			if !serviceDeps[depKey] {
				depEdge := &graph.Edge{
					ID:       graph.NewEdgeID(graph.EdgeDependsOn, callerSvc.ID, targetSvc.ID),
					Type:     graph.EdgeDependsOn,
					SourceID: callerSvc.ID,
					TargetID: targetSvc.ID,
					Properties: map[string]string{
						graph.PropKind: "api_dependency",
					},
				}
				if err := l.store.AddEdge(ctx, depEdge); err == nil {
					serviceDeps[depKey] = true
				}
			}
		}

		resolved++
	}

	return resolved, nil
}

// paramPattern matches URL path parameters like {id}, :id, <id>.
var paramPattern = regexp.MustCompile(`\{[^}]+\}|:[a-zA-Z_][a-zA-Z0-9_]*|<[^>]+>`)

// normalizeURLPath normalizes a URL path for matching: lowercase, no
// trailing slash, a leading slash, and path parameters replaced with *.
func normalizeURLPath(p string) string {
	p = strings.ToLower(p)
	p = strings.TrimRight(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return paramPattern.ReplaceAllString(p, "*")
}

// matchResource tries to match a normalized demand URL to a resource.
// Exact match first, then suffix matching for calls that carry a gateway or
// host prefix, then segment matching with * as a single-segment wildcard.
func matchResource(target string, index map[string]*graph.Node) *graph.Node {
	if index == nil {
		return nil
	}
	if res, ok := index[target]; ok {
		return res
	}

	for url, res := range index {
		if strings.HasSuffix(target, url) || strings.HasSuffix(url, target) {
			return res
		}
	}

	targetSegments := strings.Split(target, "/")
	for url, res := range index {
		if matchSegments(targetSegments, strings.Split(url, "/")) {
			return res
		}
	}

	return nil
}

// matchSegments checks whether two URL segment slices match, treating * in
// either side as a wildcard for any single segment.
func matchSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == "*" || b[i] == "*" {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
