package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	repoRoot  string
	dbPath    string
	indexDir  string
	modelName string
	tableName string
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "codekg",
	Short: "Deterministic knowledge-graph indexer and hybrid query engine for Python repos",
	Long: "codekg parses a Python source tree into a deterministic call/import/inheritance\n" +
		"graph, builds a semantic index over it, and answers hybrid (semantic seed plus\n" +
		"graph hop expansion) queries against the result.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repoRoot, "repo", ".", "repository root to operate on")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the graph database (default: <repo>/.codekg/graph.db)")
	rootCmd.PersistentFlags().StringVar(&indexDir, "index-dir", "", "directory holding the semantic index (default: <repo>/.codekg/index)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "embedding model: fake, fake:<dim>, openai:<model>, langchain:<model>")
	rootCmd.PersistentFlags().StringVar(&tableName, "table", "", "semantic index table/class name (default: nodes)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&vectorStoreFlag, "vector-store", "sqlite", "vector store backend: sqlite or weaviate")
	rootCmd.PersistentFlags().StringVar(&weaviateScheme, "weaviate-scheme", "http", "scheme for --vector-store weaviate")
	rootCmd.PersistentFlags().StringVar(&weaviateHost, "weaviate-host", "localhost:8080", "host:port for --vector-store weaviate")
	rootCmd.PersistentFlags().IntVar(&fakeDimFlag, "fake-dim", 0, "vector dimension for --model fake (default: embedder's own default)")
	rootCmd.SilenceUsage = true
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
