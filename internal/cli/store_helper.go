package cli

import (
	"fmt"

	"github.com/unit-mesh/autodev-context/internal/config"
	"github.com/unit-mesh/autodev-context/internal/graph/embedded"
)

// resolveGraphPath returns the graph database path, preferring the CLI flag
// over the config file over the default.
func resolveGraphPath(cfg *config.Config, flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if cfg != nil && cfg.Graph.Path != "" {
		return cfg.Graph.Path
	}
	return config.DefaultGraphDir
}

// openStore opens the embedded graph store at the resolved path.
func openStore(cfg *config.Config, flagPath string) (*embedded.Store, string, error) {
	path := resolveGraphPath(cfg, flagPath)
	store, err := embedded.NewStore(path)
	if err != nil {
		return nil, "", fmt.Errorf("open graph store: %w", err)
	}
	return store, path, nil
}
