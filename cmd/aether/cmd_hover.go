package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aether/internal/config"
	"aether/internal/indexer"
)

var hoverCmd = &cobra.Command{
	Use:   "hover <file_path> <line> <col>",
	Short: "Resolve the SIR hover body for a position in a file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := workspaceRoot()
		cfg, err := config.Load(ws)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		line, err := parseIntArg(args[1])
		if err != nil {
			return fmt.Errorf("invalid line: %w", err)
		}
		col, err := parseIntArg(args[2])
		if err != nil {
			return fmt.Errorf("invalid col: %w", err)
		}

		idx, err := indexer.Boot(ws, cfg, false)
		if err != nil {
			return fmt.Errorf("boot indexer: %w", err)
		}
		defer idx.Close()

		body, err := idx.Search.Hover(args[0], line, col)
		if err != nil {
			return fmt.Errorf("hover: %w", err)
		}
		if body == "" {
			fmt.Println("no symbol at that position")
			return nil
		}
		fmt.Println(body)
		return nil
	},
}
