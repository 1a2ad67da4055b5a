package config

import (
	"path/filepath"
	"testing"
)

func TestRegistryRoundTrip(t *testing.T) {
	// Use a temp dir as HOME so the real registry is untouched.
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	regPath := RegistryPath()
	if regPath != filepath.Join(tmpHome, registryFileName) {
		t.Errorf("RegistryPath() = %q", regPath)
	}

	if entries := ListProjects(); len(entries) != 0 {
		t.Errorf("ListProjects() = %d entries, want 0", len(entries))
	}

	if err := RegisterProject("storefront", "/srv/storefront", "/srv/storefront/.autodev/graph"); err != nil {
		t.Fatalf("RegisterProject: %v", err)
	}
	entries := ListProjects()
	if len(entries) != 1 {
		t.Fatalf("ListProjects() = %d entries, want 1", len(entries))
	}
	if entries[0].Name != "storefront" || entries[0].Root != "/srv/storefront" {
		t.Errorf("entry = %+v", entries[0])
	}

	// Re-registering the same root updates in place.
	if err := RegisterProject("storefront-v2", "/srv/storefront", "/srv/storefront/.autodev/graph"); err != nil {
		t.Fatalf("RegisterProject: %v", err)
	}
	entries = ListProjects()
	if len(entries) != 1 || entries[0].Name != "storefront-v2" {
		t.Errorf("entries after update = %+v", entries)
	}

	// Default name falls back to the directory base.
	if err := RegisterProject("", "/srv/admin", ""); err != nil {
		t.Fatalf("RegisterProject: %v", err)
	}
	entries = ListProjects()
	if len(entries) != 2 {
		t.Fatalf("ListProjects() = %d entries, want 2", len(entries))
	}

	entry, ok := LookupProject("/srv/admin/app/api")
	if !ok || entry.Name != "admin" {
		t.Errorf("LookupProject = %+v, %v", entry, ok)
	}
	if _, ok := LookupProject("/srv/unrelated"); ok {
		t.Error("LookupProject should miss for unregistered path")
	}
}
