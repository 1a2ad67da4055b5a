package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unit-mesh/autodev-context/internal/config"
	"github.com/unit-mesh/autodev-context/internal/indexer"
	"github.com/unit-mesh/autodev-context/internal/linker"
	"github.com/unit-mesh/autodev-context/internal/watcher"
)

func newScanCmd() *cobra.Command {
	var graphPath string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a full scan and link the dependency graph",
		Long: `Scan every configured workspace, extract REST resources and demands from
each source file, and link them into the cross-service dependency graph.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			store, dbPath, err := openStore(cfg, graphPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			logFn := func(format string, args ...any) {
				fmt.Fprintf(out, format+"\n", args...)
			}

			start := time.Now()
			filesIndexed := 0
			var indexErrors []string

			for _, ws := range cfg.Workspaces {
				fmt.Fprintf(out, "Scanning %s...\n", ws.Path)

				idx := indexer.New(indexer.Config{
					GraphStore: store,
					WatcherConfig: &watcher.Config{
						Paths:           []string{ws.Path},
						ExcludePatterns: cfg.Watch.Exclude,
					},
					WorkspaceRoot: ws.Path,
					Workers:       cfg.Index.Workers,
					Verbose:       verbose,
					Logger:        logFn,
				})
				if err := idx.IndexDirectory(cmd.Context(), ws.Path); err != nil {
					return fmt.Errorf("scan %s: %w", ws.Path, err)
				}

				stats := idx.Stats()
				filesIndexed += stats.FilesIndexed
				indexErrors = append(indexErrors, stats.Errors...)
			}

			lnk := linker.NewLinker(store, logFn, verbose)
			if err := lnk.RunAll(cmd.Context()); err != nil {
				return fmt.Errorf("link graph: %w", err)
			}

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get stats: %w", err)
			}

			fmt.Fprintf(out, "\nScan complete in %s\n", time.Since(start).Round(time.Millisecond))
			fmt.Fprintf(out, "  Files indexed: %d\n", filesIndexed)
			fmt.Fprintf(out, "  Nodes:         %d\n", stats.NodeCount)
			fmt.Fprintf(out, "  Edges:         %d\n", stats.EdgeCount)
			fmt.Fprintf(out, "  Graph:         %s\n", dbPath)
			if len(indexErrors) > 0 {
				fmt.Fprintf(out, "  Errors:        %d\n", len(indexErrors))
				for _, e := range indexErrors {
					fmt.Fprintf(out, "    %s\n", e)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "db-path", "", "path for the graph database")

	return cmd
}
