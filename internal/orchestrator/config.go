package orchestrator

import (
	"path/filepath"

	"github.com/suchanek/codekg/internal/primitives"
)

// Config enumerates every option recognized at orchestrator
// construction (spec.md §6, "Configuration"). RepoRoot is the only
// required field; everything else defaults rooted at
// <RepoRoot>/.codekg/.
type Config struct {
	RepoRoot  string
	DBPath    string
	IndexDir  string
	ModelName string
	TableName string
}

func (c Config) withDefaults() Config {
	root := c.RepoRoot
	if c.DBPath == "" {
		c.DBPath = filepath.Join(root, ".codekg", "graph.db")
	}
	if c.IndexDir == "" {
		c.IndexDir = filepath.Join(root, ".codekg", "index")
	}
	if c.ModelName == "" {
		c.ModelName = "fake"
	}
	if c.TableName == "" {
		c.TableName = "nodes"
	}
	return c
}

// Defaults for query and pack parameters (spec.md §4.5.3, "Defaults").
const (
	DefaultK              = 8
	DefaultHop            = 1
	DefaultIncludeSymbols = false
	DefaultContext        = 5
	DefaultMaxLines       = 60
	DefaultMaxNodes       = 15
	DefaultPerFileCap     = 3
	topWindowLines        = 60
)

// DefaultRels is the relation set query/pack use when the caller does
// not supply one.
func DefaultRels() []primitives.Rel {
	return []primitives.Rel{
		primitives.RelContains, primitives.RelCalls, primitives.RelImports, primitives.RelInherits,
	}
}
