package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unit-mesh/autodev-context/internal/config"
	"github.com/unit-mesh/autodev-context/internal/indexer"
	"github.com/unit-mesh/autodev-context/internal/linker"
	"github.com/unit-mesh/autodev-context/internal/watcher"
)

// relinkInterval is how often the watch loop checks for accumulated changes
// and re-runs the linker.
const relinkInterval = 2 * time.Second

func newWatchCmd() *cobra.Command {
	var graphPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch workspaces and keep the dependency graph up to date",
		Long: `Run an initial scan of every configured workspace, then watch for file
changes and update the dependency graph incrementally. The linker re-runs
whenever changed files have accumulated.`,
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

			// Set up signal handling.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Fprintln(out, "\nShutting down...")
				cancel()
			}()

			fmt.Fprintf(out, "Watching %d workspaces...\n", len(cfg.Workspaces))
			for _, ws := range cfg.Workspaces {
				fmt.Fprintf(out, "  %s\n", ws.Path)
			}
			fmt.Fprintf(out, "Graph database: %s\n", dbPath)

			debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond

			// One indexer per workspace so graph paths stay relative to
			// their workspace root. They share the graph store.
			indexers := make([]*indexer.Indexer, 0, len(cfg.Workspaces))
			for _, ws := range cfg.Workspaces {
				indexers = append(indexers, indexer.New(indexer.Config{
					GraphStore: store,
					WatcherConfig: &watcher.Config{
						Paths:           []string{ws.Path},
						ExcludePatterns: cfg.Watch.Exclude,
						Debounce:        debounce,
					},
					WorkspaceRoot: ws.Path,
					Workers:       cfg.Index.Workers,
					Verbose:       verbose,
					Logger:        logFn,
				}))
			}

			lnk := linker.NewLinker(store, logFn, verbose)

			var wg sync.WaitGroup
			errCh := make(chan error, len(indexers))
			for _, idx := range indexers {
				wg.Add(1)
				go func(idx *indexer.Indexer) {
					defer wg.Done()
					if err := idx.Start(ctx); err != nil {
						errCh <- err
						cancel()
					}
				}(idx)
			}

			// Re-link whenever changed files have accumulated.
			wg.Add(1)
			go func() {
				defer wg.Done()
				ticker := time.NewTicker(relinkInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						changed := false
						for _, idx := range indexers {
							if idx.HasChanges() {
								changed = true
							}
						}
						if !changed {
							continue
						}
						if err := lnk.RunAll(ctx); err != nil {
							logFn("relink: %v", err)
							continue
						}
						for _, idx := range indexers {
							idx.ResetChanges()
						}
					}
				}
			}()

			wg.Wait()
			close(errCh)
			for err := range errCh {
				if err != nil {
					return fmt.Errorf("indexer: %w", err)
				}
			}

			// Print final stats.
			stats, err := store.Stats(context.Background())
			if err == nil {
				fmt.Fprintf(out, "\nFinal stats:\n")
				fmt.Fprintf(out, "  Nodes: %d\n", stats.NodeCount)
				fmt.Fprintf(out, "  Edges: %d\n", stats.EdgeCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "db-path", "", "path for the graph database")

	return cmd
}
