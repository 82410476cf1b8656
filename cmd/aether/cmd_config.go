package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aether/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration for the current workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := workspaceRoot()
		cfg, err := config.Load(ws)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		fmt.Printf("config path: %s\n\n", config.Path(ws))
		fmt.Printf("[general]\nlog_level = %q\n\n", cfg.General.LogLevel)
		fmt.Printf("[inference]\nprovider = %q\nmodel = %q\nendpoint = %q\nconcurrency = %d\n\n",
			cfg.Inference.Provider, cfg.Inference.Model, cfg.Inference.Endpoint, cfg.Inference.Concurrency)
		fmt.Printf("[embeddings]\nenabled = %t\nprovider = %q\nvector_backend = %q\n\n",
			cfg.Embeddings.Enabled, cfg.Embeddings.Provider, cfg.Embeddings.VectorBackend)
		fmt.Printf("[search]\nreranker = %q\ncalibrated_thresholds = %v\n\n",
			cfg.Search.Reranker, cfg.Search.CalibratedThresholds)
		fmt.Printf("[storage]\nmirror_sir_files = %t\n", cfg.Storage.MirrorSIRFiles)
		return nil
	},
}
