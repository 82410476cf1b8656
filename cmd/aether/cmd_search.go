package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aether/internal/config"
	"aether/internal/indexer"
	"aether/internal/search"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed symbols by substring, printed as a tab-separated table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := workspaceRoot()
		cfg, err := config.Load(ws)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		idx, err := indexer.Boot(ws, cfg, false)
		if err != nil {
			return fmt.Errorf("boot indexer: %w", err)
		}
		defer idx.Close()

		symbols, err := idx.Search.SearchSymbols(args[0], searchLimit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		fmt.Print(search.FormatTSV(symbols))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "maximum number of results")
}
