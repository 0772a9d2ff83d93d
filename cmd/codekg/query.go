package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suchanek/codekg/internal/orchestrator"
	"github.com/suchanek/codekg/internal/primitives"
)

var (
	queryK       int
	queryHop     int
	queryRels    string
	querySymbols bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a hybrid semantic-seed plus graph-expansion query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer o.Close()

		params := orchestrator.DefaultQueryParams()
		params.Q = args[0]
		if cmd.Flags().Changed("k") {
			params.K = queryK
		}
		if cmd.Flags().Changed("hop") {
			params.Hop = queryHop
		}
		if cmd.Flags().Changed("rels") {
			params.Rels = parseRels(queryRels)
		}
		params.IncludeSymbols = querySymbols

		result, err := o.Query(context.Background(), params)
		if err != nil {
			return err
		}

		p := newPalette()
		p.section(fmt.Sprintf("%d node(s) (from %d seed(s), %d expanded)", result.ReturnedNodes, result.SeedsCount, result.ExpandedCount))
		for _, n := range result.Nodes {
			fmt.Printf("  [hop %d] %-8s %s  %s:%d\n", n.BestHop, n.Kind, n.ID, n.ModulePath, n.LineNo)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryK, "k", orchestrator.DefaultK, "number of semantic seeds")
	queryCmd.Flags().IntVar(&queryHop, "hop", orchestrator.DefaultHop, "graph expansion radius")
	queryCmd.Flags().StringVar(&queryRels, "rels", "", "comma-separated relation types to expand (default: CONTAINS,CALLS,IMPORTS,INHERITS)")
	queryCmd.Flags().BoolVar(&querySymbols, "symbols", orchestrator.DefaultIncludeSymbols, "include symbol-kind nodes in results")
	rootCmd.AddCommand(queryCmd)
}

func parseRels(s string) []primitives.Rel {
	if strings.TrimSpace(s) == "" {
		return orchestrator.DefaultRels()
	}
	parts := strings.Split(s, ",")
	rels := make([]primitives.Rel, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			rels = append(rels, primitives.Rel(part))
		}
	}
	return rels
}
