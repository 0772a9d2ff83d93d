// Package config loads the optional .codekg.yaml file SPEC_FULL.md
// §6.1 describes, mirroring the teacher's .cgrconfig convention
// (internal/httplink/config.go): a YAML file at the repository root,
// missing or invalid files silently yielding defaults, since this is
// an optional override, not a required manifest.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/suchanek/codekg/internal/orchestrator"
)

// FileName is the configuration file's name at the repository root.
const FileName = ".codekg.yaml"

// File is the on-disk shape of .codekg.yaml. Every field mirrors an
// orchestrator.Config field; an empty field means "use the
// orchestrator's own default".
type File struct {
	DBPath    string `yaml:"db_path"`
	IndexDir  string `yaml:"index_dir"`
	ModelName string `yaml:"model_name"`
	TableName string `yaml:"table_name"`
}

// Load reads .codekg.yaml from repoRoot, if present, and merges it
// into an orchestrator.Config with the given repo root. A missing or
// unparsable file yields a Config with only RepoRoot set, matching the
// teacher's "file not found or unreadable — use defaults" behavior.
func Load(repoRoot string) orchestrator.Config {
	cfg := orchestrator.Config{RepoRoot: repoRoot}

	data, err := os.ReadFile(filepath.Join(repoRoot, FileName))
	if err != nil {
		return cfg
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg
	}

	if f.DBPath != "" {
		cfg.DBPath = resolvePath(repoRoot, f.DBPath)
	}
	if f.IndexDir != "" {
		cfg.IndexDir = resolvePath(repoRoot, f.IndexDir)
	}
	cfg.ModelName = f.ModelName
	cfg.TableName = f.TableName
	return cfg
}

func resolvePath(repoRoot, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(repoRoot, p)
}
