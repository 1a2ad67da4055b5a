// Package cli implements the command-line interface for autodev-context.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "autodev-context",
	Short: "autodev-context - Static REST API topology for Next.js codebases",
	Long: `autodev-context scans Next.js workspaces, extracts the REST resources each
file exposes and the HTTP demands it makes, and links them into a
cross-service dependency graph stored in an embedded database.

Commands:
  init       Initialize a .autodev.yaml config file
  scan       Run a full scan and link the dependency graph
  watch      Watch workspaces and keep the graph up to date
  status     Show graph stats
  export     Export the dependency graph as JSON or YAML
  explain    Ask an LLM questions about the indexed topology`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .autodev.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	bindFlag := func(key, flag string) {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
	bindFlag("config_file", "config")

	// Add subcommands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}
