package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suchanek/codekg/internal/orchestrator"
)

var (
	packK          int
	packHop        int
	packRels       string
	packSymbols    bool
	packContext    int
	packMaxLines   int
	packMaxNodes   int
	packPerFileCap int
)

var packCmd = &cobra.Command{
	Use:   "pack <text>",
	Short: "Run a hybrid query and render matched nodes as markdown snippets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer o.Close()

		params := orchestrator.DefaultPackParams()
		params.Q = args[0]
		if cmd.Flags().Changed("k") {
			params.K = packK
		}
		if cmd.Flags().Changed("hop") {
			params.Hop = packHop
		}
		if cmd.Flags().Changed("rels") {
			params.Rels = parseRels(packRels)
		}
		params.IncludeSymbols = packSymbols
		if cmd.Flags().Changed("context") {
			params.Context = packContext
		}
		if cmd.Flags().Changed("max-lines") {
			params.MaxLines = packMaxLines
		}
		if cmd.Flags().Changed("max-nodes") {
			params.MaxNodes = packMaxNodes
		}
		if cmd.Flags().Changed("per-file-cap") {
			params.PerFileCap = packPerFileCap
		}

		pack, err := o.Pack(context.Background(), params)
		if err != nil {
			return err
		}
		fmt.Print(pack.Markdown())
		return nil
	},
}

func init() {
	packCmd.Flags().IntVar(&packK, "k", orchestrator.DefaultK, "number of semantic seeds")
	packCmd.Flags().IntVar(&packHop, "hop", orchestrator.DefaultHop, "graph expansion radius")
	packCmd.Flags().StringVar(&packRels, "rels", "", "comma-separated relation types to expand")
	packCmd.Flags().BoolVar(&packSymbols, "symbols", orchestrator.DefaultIncludeSymbols, "include symbol-kind nodes in results")
	packCmd.Flags().IntVar(&packContext, "context", orchestrator.DefaultContext, "context lines around each node's span")
	packCmd.Flags().IntVar(&packMaxLines, "max-lines", orchestrator.DefaultMaxLines, "maximum lines per snippet")
	packCmd.Flags().IntVar(&packMaxNodes, "max-nodes", orchestrator.DefaultMaxNodes, "maximum packed nodes")
	packCmd.Flags().IntVar(&packPerFileCap, "per-file-cap", orchestrator.DefaultPerFileCap, "maximum snippets per file")
	rootCmd.AddCommand(packCmd)
}
