package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aether/internal/config"
	"aether/internal/indexer"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run the initial symbol/SIR scan of the workspace and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := workspaceRoot()
		cfg, err := config.Load(ws)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		idx, err := indexer.Boot(ws, cfg, verbose)
		if err != nil {
			return fmt.Errorf("boot indexer: %w", err)
		}
		defer idx.Close()

		if err := idx.Seed(context.Background()); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Println("index complete")
		return nil
	},
}
