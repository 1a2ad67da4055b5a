package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"
)

func TestValidate(t *testing.T) {
	valid := &Config{
		Workspaces: []WorkspaceConfig{{Path: "/tmp/web"}},
		Graph:      GraphConfig{Storage: "embedded"},
		Explain:    ExplainConfig{Provider: "anthropic"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no workspaces", Config{}},
		{"empty workspace path", Config{Workspaces: []WorkspaceConfig{{}}}},
		{"bad storage", Config{
			Workspaces: []WorkspaceConfig{{Path: "/tmp/web"}},
			Graph:      GraphConfig{Storage: "neo4j"},
		}},
		{"negative debounce", Config{
			Workspaces: []WorkspaceConfig{{Path: "/tmp/web"}},
			Watch:      WatchConfig{DebounceMs: -1},
		}},
		{"bad provider", Config{
			Workspaces: []WorkspaceConfig{{Path: "/tmp/web"}},
			Explain:    ExplainConfig{Provider: "openai"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	cfg := &Config{
		Project:    ProjectConfig{Name: "storefront"},
		Workspaces: []WorkspaceConfig{{Path: "/srv/storefront/web"}},
		Watch: WatchConfig{
			Exclude:    []string{"node_modules", ".next"},
			DebounceMs: 250,
		},
		Graph: GraphConfig{Storage: "embedded", Path: ".autodev/graph"},
		Index: IndexConfig{Workers: 8},
	}

	path := filepath.Join(t.TempDir(), ".autodev.yaml")
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Project.Name != "storefront" {
		t.Errorf("project name = %q", got.Project.Name)
	}
	if len(got.Workspaces) != 1 || got.Workspaces[0].Path != "/srv/storefront/web" {
		t.Errorf("workspaces = %+v", got.Workspaces)
	}
	if got.Watch.DebounceMs != 250 {
		t.Errorf("debounce = %d", got.Watch.DebounceMs)
	}
	if got.Index.Workers != 8 {
		t.Errorf("workers = %d", got.Index.Workers)
	}
}
