package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Load(dir)
	if cfg.RepoRoot != dir {
		t.Errorf("expected RepoRoot %s, got %s", dir, cfg.RepoRoot)
	}
	if cfg.DBPath != "" || cfg.IndexDir != "" {
		t.Errorf("expected no overrides without a config file, got %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
db_path: custom/graph.db
index_dir: custom/index
model_name: text-embedding-3-small
table_name: codekg_nodes
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(dir)
	if cfg.DBPath != filepath.Join(dir, "custom/graph.db") {
		t.Errorf("unexpected db_path: %s", cfg.DBPath)
	}
	if cfg.IndexDir != filepath.Join(dir, "custom/index") {
		t.Errorf("unexpected index_dir: %s", cfg.IndexDir)
	}
	if cfg.ModelName != "text-embedding-3-small" {
		t.Errorf("unexpected model_name: %s", cfg.ModelName)
	}
	if cfg.TableName != "codekg_nodes" {
		t.Errorf("unexpected table_name: %s", cfg.TableName)
	}
}

func TestLoadInvalidYAMLFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("not: [valid: yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(dir)
	if cfg.DBPath != "" || cfg.IndexDir != "" {
		t.Errorf("expected defaults on invalid yaml, got %+v", cfg)
	}
}

func TestLoadAbsoluteOverridePassedThrough(t *testing.T) {
	dir := t.TempDir()
	content := "db_path: /var/lib/codekg/graph.db\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(dir)
	if cfg.DBPath != "/var/lib/codekg/graph.db" {
		t.Errorf("expected absolute path passed through unchanged, got %s", cfg.DBPath)
	}
}
