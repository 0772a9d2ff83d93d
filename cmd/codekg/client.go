package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suchanek/codekg/internal/config"
	"github.com/suchanek/codekg/internal/orchestrator"
	"github.com/suchanek/codekg/internal/semantic"
)

var (
	vectorStoreFlag string
	weaviateScheme  string
	weaviateHost    string
	fakeDimFlag     int
)

// newOrchestrator resolves .codekg.yaml, applies command-line
// overrides on top of it, and wires an embedder plus vector store
// matching --model and --vector-store. --model defaults to "fake" so
// the CLI runs with no external services and no API key.
func newOrchestrator() (*orchestrator.Orchestrator, error) {
	cfg := config.Load(repoRoot)
	cfg.RepoRoot = repoRoot
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if indexDir != "" {
		cfg.IndexDir = indexDir
	}
	if modelName != "" {
		cfg.ModelName = modelName
	}
	if tableName != "" {
		cfg.TableName = tableName
	}
	if cfg.IndexDir == "" {
		cfg.IndexDir = filepath.Join(repoRoot, ".codekg", "index")
	}
	if cfg.TableName == "" {
		cfg.TableName = "nodes"
	}

	embedder, err := buildEmbedder(cfg.ModelName)
	if err != nil {
		return nil, err
	}

	vstore, err := buildVectorStore(cfg, embedder.Dimension())
	if err != nil {
		return nil, err
	}

	return orchestrator.New(cfg, embedder, vstore), nil
}

// buildEmbedder parses --model into a concrete semantic.Embedder.
// Accepted forms: "fake", "fake:<dim>", "openai:<model>",
// "langchain:<model>". An unset or empty value falls back to "fake".
func buildEmbedder(model string) (semantic.Embedder, error) {
	if model == "" {
		model = "fake"
	}
	provider, arg, _ := strings.Cut(model, ":")

	switch provider {
	case "fake", "":
		dim := fakeDimFlag
		if dim == 0 && arg != "" {
			if n, err := strconv.Atoi(arg); err == nil {
				dim = n
			}
		}
		return semantic.NewFakeEmbedder(dim), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("--model openai:%s requires OPENAI_API_KEY", arg)
		}
		return semantic.NewOpenAIEmbedder(apiKey, arg), nil

	case "langchain":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("--model langchain:%s requires OPENAI_API_KEY", arg)
		}
		return semantic.NewLangChainEmbedder(apiKey, arg, 0)

	default:
		return nil, fmt.Errorf("unknown embedding model provider: %s", provider)
	}
}

// buildVectorStore wires --vector-store into a concrete
// semantic.VectorStore: "sqlite" (default, a sibling semantic.db file
// under cfg.IndexDir) or "weaviate" (an external Weaviate instance
// reached via --weaviate-scheme/--weaviate-host).
func buildVectorStore(cfg orchestrator.Config, dim int) (semantic.VectorStore, error) {
	switch vectorStoreFlag {
	case "", "sqlite":
		return semantic.OpenSQLiteVectorStore(cfg.IndexDir, cfg.TableName)
	case "weaviate":
		return semantic.NewWeaviateVectorStore(weaviateScheme, weaviateHost, cfg.TableName), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vectorStoreFlag)
	}
}
