package indexer

import (
	"github.com/unit-mesh/autodev-context/internal/graph"
	"github.com/unit-mesh/autodev-context/internal/restapi"
	"github.com/unit-mesh/autodev-context/internal/structurer"
)

// buildGraph converts one file's extraction results into graph nodes and
// edges. The file node anchors everything: functions hang off it with
// Contains edges, resources with Exposes edges, and demands with Calls edges
// from the attributed function (or the file itself for module-level calls).
func buildGraph(relPath, languageID string, model *structurer.CodeFile, resources []restapi.Resource, demands []restapi.Demand) ([]*graph.Node, []*graph.Edge) {
	var nodes []*graph.Node
	var edges []*graph.Edge

	fileNode := &graph.Node{
		ID:       graph.NewNodeID(string(graph.NodeFile), relPath, relPath),
		Type:     graph.NodeFile,
		Name:     relPath,
		FilePath: relPath,
		Language: languageID,
	}
	nodes = append(nodes, fileNode)

	functionIDs := make(map[string]string)
	if model != nil {
		for _, fn := range model.Functions {
			fnNode := &graph.Node{
				ID:       graph.NewNodeID(string(graph.NodeFunction), relPath, fn.Name),
				Type:     graph.NodeFunction,
				Name:     fn.Name,
				FilePath: relPath,
				Line:     fn.Line,
				Language: languageID,
			}
			nodes = append(nodes, fnNode)
			functionIDs[fn.Name] = fnNode.ID
			edges = append(edges, &graph.Edge{
				ID:       graph.NewEdgeID(graph.EdgeContains, fileNode.ID, fnNode.ID),
				Type:     graph.EdgeContains,
				SourceID: fileNode.ID,
				TargetID: fnNode.ID,
			})
		}
	}

	for _, res := range resources {
		name := res.HTTPMethod + " " + res.URL
		resNode := &graph.Node{
			ID:       graph.NewNodeID(string(graph.NodeResource), relPath, name),
			Type:     graph.NodeResource,
			Name:     name,
			FilePath: relPath,
			Package:  res.Package,
			Language: languageID,
			Properties: map[string]string{
				graph.PropHTTPMethod: res.HTTPMethod,
				graph.PropURL:        res.URL,
				graph.PropHandler:    res.Handler,
				graph.PropConvention: string(res.Convention),
			},
		}
		nodes = append(nodes, resNode)
		edges = append(edges, &graph.Edge{
			ID:       graph.NewEdgeID(graph.EdgeExposes, fileNode.ID, resNode.ID),
			Type:     graph.EdgeExposes,
			SourceID: fileNode.ID,
			TargetID: resNode.ID,
		})
	}

	for _, dem := range demands {
		name := dem.TargetHTTPMethod + " " + dem.TargetURL
		demNode := &graph.Node{
			ID:       graph.NewNodeID(string(graph.NodeDemand), relPath, dem.SourceCaller+":"+name),
			Type:     graph.NodeDemand,
			Name:     name,
			FilePath: relPath,
			Language: languageID,
			Properties: map[string]string{
				graph.PropHTTPMethod: dem.TargetHTTPMethod,
				graph.PropURL:        dem.TargetURL,
				graph.PropHandler:    dem.SourceCaller,
			},
		}
		nodes = append(nodes, demNode)

		sourceID := fileNode.ID
		if fnID, ok := functionIDs[dem.SourceCaller]; ok && dem.SourceCaller != "" {
			sourceID = fnID
		}
		edges = append(edges, &graph.Edge{
			ID:       graph.NewEdgeID(graph.EdgeCalls, sourceID, demNode.ID),
			Type:     graph.EdgeCalls,
			SourceID: sourceID,
			TargetID: demNode.ID,
		})
	}

	return nodes, edges
}
