package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report the graph store's current node and edge counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer o.Close()

		stats, err := o.Stats(context.Background())
		if err != nil {
			return err
		}

		p := newPalette()
		p.section("Graph stats")
		p.kv("db", stats.DBPath)
		p.kv("total_nodes", stats.TotalNodes)
		p.kv("total_edges", stats.TotalEdges)
		fmt.Println("  node_counts:")
		for kind, count := range stats.NodeCounts {
			fmt.Printf("    %-10s %d\n", kind, count)
		}
		fmt.Println("  edge_counts:")
		for rel, count := range stats.EdgeCounts {
			fmt.Printf("    %-10s %d\n", rel, count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
