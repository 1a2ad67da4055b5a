package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/unit-mesh/autodev-context/internal/config"
)

// detectWorkspaces walks rootDir (depth-limited to 2 levels) and returns
// directories that look like Next.js workspaces, identified by a
// package.json next to a pages/ or app/ directory.
func detectWorkspaces(rootDir string) []string {
	found := make(map[string]bool)

	rootDepth := strings.Count(filepath.ToSlash(rootDir), "/")
	_ = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			depth := strings.Count(filepath.ToSlash(path), "/") - rootDepth
			if depth > 2 {
				return fs.SkipDir
			}
			base := d.Name()
			if base == ".git" || base == "node_modules" || base == ".next" || base == "dist" || base == "build" {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() != "package.json" {
			return nil
		}
		dir := filepath.Dir(path)
		for _, routerDir := range []string{"pages", "app", filepath.Join("src", "pages"), filepath.Join("src", "app")} {
			if info, err := os.Stat(filepath.Join(dir, routerDir)); err == nil && info.IsDir() {
				found[dir] = true
				break
			}
		}
		return nil
	})

	result := make([]string, 0, len(found))
	for dir := range found {
		result = append(result, dir)
	}
	sort.Strings(result)
	return result
}

func newInitCmd() *cobra.Command {
	var nonInteractive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a .autodev.yaml config file",
		Long: `Initialize an autodev-context project in the current directory.

Runs an interactive wizard (or uses detected defaults with --yes), writes
a .autodev.yaml config file, and registers the project in the global
registry for cross-project lookup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			configPath := filepath.Join(cwd, config.DefaultConfigFile+"."+config.DefaultConfigType)
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists; project is already initialized", configPath)
			}

			if nonInteractive {
				return runDefaultInit(cmd, cwd, configPath)
			}
			return runInteractiveInit(cmd, cwd, configPath)
		},
	}

	cmd.Flags().BoolVarP(&nonInteractive, "yes", "y", false, "skip the wizard and use detected defaults")

	return cmd
}

// runDefaultInit writes a config built from auto-detected workspaces.
func runDefaultInit(cmd *cobra.Command, cwd, configPath string) error {
	workspaces := detectWorkspaces(cwd)
	if len(workspaces) == 0 {
		workspaces = []string{cwd}
	}
	cfg := buildConfig(filepath.Base(cwd), workspaces, "anthropic", "", "")
	return finishInit(cmd, cfg, cwd, configPath)
}

// runInteractiveInit runs the TUI wizard for project initialization.
func runInteractiveInit(cmd *cobra.Command, cwd, configPath string) error {
	out := cmd.OutOrStdout()

	detected := detectWorkspaces(cwd)

	var (
		projectName    = filepath.Base(cwd)
		workspaceInput = strings.Join(detected, "\n")
		llmProvider    = "anthropic"
		gcpProject     string
		gcpRegion      = "us-central1"
		confirm        bool
	)
	if workspaceInput == "" {
		workspaceInput = cwd
	}
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" || os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		llmProvider = "vertex-ai"
		gcpProject = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	providerOptions := []huh.Option[string]{
		huh.NewOption("Anthropic API", "anthropic"),
		huh.NewOption("Vertex AI (GCP)", "vertex-ai"),
	}

	form := huh.NewForm(
		// Group 1: Project Setup
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&projectName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("project name cannot be empty")
					}
					return nil
				}),
			huh.NewText().
				Title("Workspaces to scan").
				Description("One path per line; detected Next.js workspaces are pre-filled").
				Value(&workspaceInput).
				Validate(func(s string) error {
					if len(splitLines(s)) == 0 {
						return fmt.Errorf("at least one workspace path is required")
					}
					return nil
				}),
		).Title("Project Setup"),

		// Group 2: LLM Provider
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM provider for 'explain'").
				Options(providerOptions...).
				Value(&llmProvider),
		).Title("LLM Configuration"),

		// Group 2b: Vertex AI Config (hidden unless vertex-ai selected)
		huh.NewGroup(
			huh.NewInput().
				Title("GCP Project ID").
				Value(&gcpProject).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("GCP project ID is required for Vertex AI")
					}
					return nil
				}),
			huh.NewInput().
				Title("GCP Region").
				Value(&gcpRegion).
				Placeholder("us-central1").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("GCP region is required for Vertex AI")
					}
					return nil
				}),
		).Title("Vertex AI Configuration").
			WithHideFunc(func() bool { return llmProvider != "vertex-ai" }),

		// Group 2c: Anthropic Note (hidden unless anthropic selected)
		huh.NewGroup(
			huh.NewNote().
				Title("Anthropic API").
				Description("Set ANTHROPIC_API_KEY in your environment before running 'explain'."),
		).WithHideFunc(func() bool { return llmProvider != "anthropic" }),

		// Group 3: Confirm
		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				DescriptionFunc(func() string {
					providerLabel := llmProvider
					if llmProvider == "vertex-ai" {
						providerLabel = fmt.Sprintf("Vertex AI (%s / %s)", gcpProject, gcpRegion)
					}
					return fmt.Sprintf(
						"Project:     %s\n"+
							"Workspaces:  %s\n"+
							"LLM:         %s",
						projectName,
						strings.Join(splitLines(workspaceInput), ", "),
						providerLabel,
					)
				}, &workspaceInput),
			huh.NewConfirm().
				Title("Create project?").
				Value(&confirm).
				Affirmative("Create").
				Negative("Cancel"),
		).Title("Confirm"),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		return fmt.Errorf("interactive init: %w", err)
	}

	if !confirm {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	cfg := buildConfig(projectName, splitLines(workspaceInput), llmProvider, gcpProject, gcpRegion)
	return finishInit(cmd, cfg, cwd, configPath)
}

// buildConfig assembles a Config from wizard or detected values.
func buildConfig(projectName string, workspaces []string, provider, gcpProject, gcpRegion string) *config.Config {
	cfg := &config.Config{
		Project: config.ProjectConfig{Name: projectName},
		Watch: config.WatchConfig{
			Exclude: []string{
				"node_modules",
				".git",
				".next",
				"dist",
				"build",
				"coverage",
			},
			DebounceMs: 100,
		},
		Graph: config.GraphConfig{
			Storage: "embedded",
			Path:    config.DefaultGraphDir,
		},
		Index: config.IndexConfig{Workers: 4},
		Explain: config.ExplainConfig{
			Provider: provider,
			Model:    "claude-sonnet-4-5-20250929",
		},
	}
	for _, ws := range workspaces {
		cfg.Workspaces = append(cfg.Workspaces, config.WorkspaceConfig{Path: ws})
	}
	if provider == "vertex-ai" {
		cfg.Explain.Model = "gemini-2.0-flash"
		cfg.Explain.Project = gcpProject
		cfg.Explain.Location = gcpRegion
	}
	return cfg
}

// finishInit writes the config file and registers the project.
func finishInit(cmd *cobra.Command, cfg *config.Config, cwd, configPath string) error {
	out := cmd.OutOrStdout()

	if err := config.WriteConfig(cfg, configPath); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	fmt.Fprintf(out, "Created %s\n", configPath)

	graphPath := filepath.Join(cwd, cfg.Graph.Path)
	if err := config.RegisterProject(cfg.Project.Name, cwd, graphPath); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to register project in %s: %v\n", config.RegistryPath(), err)
	} else {
		fmt.Fprintf(out, "Registered project %q in %s\n", cfg.Project.Name, config.RegistryPath())
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Review the workspaces and excludes in .autodev.yaml")
	fmt.Fprintln(out, "  2. Add to .gitignore:")
	fmt.Fprintln(out, "       .autodev/")
	fmt.Fprintln(out, "  3. Run 'autodev-context scan' to build the dependency graph")
	fmt.Fprintln(out, "  4. Run 'autodev-context watch' to keep it up to date")

	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
