package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unit-mesh/autodev-context/internal/config"
	_ "github.com/unit-mesh/autodev-context/internal/llm" // register providers
	"github.com/unit-mesh/autodev-context/internal/prompt"
	"github.com/unit-mesh/autodev-context/pkg/llm"
)

func newExplainCmd() *cobra.Command {
	var (
		graphPath string
		provider  string
		model     string
	)

	cmd := &cobra.Command{
		Use:   "explain <question>",
		Short: "Ask an LLM questions about the indexed topology",
		Long: `Answer a question about the indexed REST topology using an LLM.

The question is grounded in the dependency graph: an overview of services
and their endpoints is always included, and any service name or URL path
mentioned in the question pulls in the matching graph context.

Examples:
  autodev-context explain "which services depend on the api service?"
  autodev-context explain "who calls /api/users?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if provider == "" {
				provider = cfg.Explain.Provider
			}
			if model == "" {
				model = cfg.Explain.Model
			}

			client, err := llm.NewClient(llm.Config{
				Provider:        provider,
				Model:           model,
				APIKey:          os.Getenv("ANTHROPIC_API_KEY"),
				Project:         cfg.Explain.Project,
				Location:        cfg.Explain.Location,
				CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			})
			if err != nil {
				return fmt.Errorf("create LLM client: %w", err)
			}
			defer client.Close()

			store, _, err := openStore(cfg, graphPath)
			if err != nil {
				return err
			}
			defer store.Close()

			logFn := func(format string, args ...any) {
				fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
			}
			explainer := prompt.NewExplainer(client, prompt.NewContextBuilder(store), logFn, verbose)

			question := strings.Join(args, " ")
			answer, err := explainer.Explain(cmd.Context(), question)
			if err != nil {
				return fmt.Errorf("explain: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&graphPath, "db-path", "", "path for the graph database")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (overrides config)")
	cmd.Flags().StringVar(&model, "model", "", "model identifier (overrides config)")

	return cmd
}
