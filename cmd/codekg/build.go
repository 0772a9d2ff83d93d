package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var buildWipe bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract the graph and build the semantic index over it",
	Long: `build runs the full pipeline: parse the repository into nodes and
edges, write them to the graph store, then embed and index the
eligible nodes (spec.md §4.5.1).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer o.Close()

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("indexing "+repoRoot),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()

		stats, err := o.Build(context.Background(), buildWipe)
		if err != nil {
			return err
		}
		bar.Finish()

		p := newPalette()
		p.section("Build complete")
		p.kv("repo_root", stats.RepoRoot)
		p.kv("db", stats.DBPath)
		p.kv("nodes", stats.TotalNodes)
		p.kv("edges", stats.TotalEdges)
		p.kv("indexed_rows", stats.IndexedRows)
		p.kv("embedding_dim", stats.EmbeddingDim)
		for kind, count := range stats.NodeCounts {
			fmt.Printf("    %-10s %d\n", kind, count)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildWipe, "wipe", false, "drop and rebuild the graph store and semantic index from scratch")
	rootCmd.AddCommand(buildCmd)
}
