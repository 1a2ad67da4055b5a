package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/unit-mesh/autodev-context/internal/config"
	"github.com/unit-mesh/autodev-context/internal/graph"
)

// Style definitions for status output.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(18)
	countStyle = lipgloss.NewStyle().Bold(true)
)

func newStatusCmd() *cobra.Command {
	var graphPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show graph stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, dbPath, err := openStore(cfg, graphPath)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(context.Background())
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, headerStyle.Render("Dependency Graph Status"))
			fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 23)))
			fmt.Fprintln(out)

			printKV(out, "Graph", dbPath)
			printKV(out, "Total nodes", countStyle.Render(fmt.Sprintf("%d", stats.NodeCount)))
			printKV(out, "Total edges", countStyle.Render(fmt.Sprintf("%d", stats.EdgeCount)))
			fmt.Fprintln(out)

			if len(stats.NodesByType) > 0 {
				fmt.Fprintf(out, "  %s\n", headerStyle.Render("Nodes by type"))
				for _, nt := range sortedNodeTypes(stats.NodesByType) {
					fmt.Fprintf(out, "    %-12s %d\n", nt, stats.NodesByType[nt])
				}
				fmt.Fprintln(out)
			}

			if len(stats.EdgesByType) > 0 {
				fmt.Fprintf(out, "  %s\n", headerStyle.Render("Edges by type"))
				for _, et := range sortedEdgeTypes(stats.EdgesByType) {
					fmt.Fprintf(out, "    %-12s %d\n", et, stats.EdgesByType[et])
				}
				fmt.Fprintln(out)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "db-path", "", "path for the graph database")

	return cmd
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "  %s%s\n", labelStyle.Render(label+":"), value)
}

func sortedNodeTypes(m map[graph.NodeType]int64) []graph.NodeType {
	keys := make([]graph.NodeType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedEdgeTypes(m map[graph.EdgeType]int64) []graph.EdgeType {
	keys := make([]graph.EdgeType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
