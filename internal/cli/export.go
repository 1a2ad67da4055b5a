package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/unit-mesh/autodev-context/internal/config"
	"github.com/unit-mesh/autodev-context/internal/graph"
)

// graphExport is the serialized form of the dependency graph.
type graphExport struct {
	Nodes []*graph.Node `json:"nodes" yaml:"nodes"`
	Edges []*graph.Edge `json:"edges" yaml:"edges"`
}

func newExportCmd() *cobra.Command {
	var (
		graphPath string
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dependency graph as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, _, err := openStore(cfg, graphPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()

			nodes, err := store.QueryNodes(ctx, graph.NodeFilter{})
			if err != nil {
				return fmt.Errorf("query nodes: %w", err)
			}
			sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

			seen := make(map[string]bool)
			var edges []*graph.Edge
			for _, node := range nodes {
				nodeEdges, err := store.GetEdges(ctx, node.ID, "")
				if err != nil {
					return fmt.Errorf("get edges for %s: %w", node.ID, err)
				}
				for _, e := range nodeEdges {
					if seen[e.ID] {
						continue
					}
					seen[e.ID] = true
					edges = append(edges, e)
				}
			}
			sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

			export := graphExport{Nodes: nodes, Edges: edges}

			var data []byte
			switch format {
			case "json":
				data, err = json.MarshalIndent(export, "", "  ")
			case "yaml":
				data, err = yaml.Marshal(export)
			}
			if err != nil {
				return fmt.Errorf("marshal graph: %w", err)
			}

			if output == "" || output == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d nodes and %d edges to %s\n", len(nodes), len(edges), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "db-path", "", "path for the graph database")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json or yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
