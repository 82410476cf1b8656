// Package main is the entry point for the aether CLI: a local
// code-intelligence daemon and query tool built on the C1-C12 core in
// internal/.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aether/internal/logging"
)

var (
	verbose   bool
	workspace string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aether",
	Short: "aether - local code-intelligence daemon",
	Long: `aether watches a workspace, extracts symbols and call/dependency
edges, synthesizes a Semantic Intent Record per symbol via a pluggable
inference provider, and exposes a search/hover/graph query surface
backed by an embedded metadata store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspaceRoot()
		level := "info"
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(ws, level, false); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// workspaceRoot resolves --workspace to an absolute path, defaulting to
// the current directory.
func workspaceRoot() string {
	ws := workspace
	if ws == "" {
		ws, _ = os.Getwd()
		return ws
	}
	if abs, err := filepath.Abs(ws); err == nil {
		return abs
	}
	return ws
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current)")

	rootCmd.AddCommand(
		indexCmd,
		watchCmd,
		searchCmd,
		hoverCmd,
		callersCmd,
		depsCmd,
		chainCmd,
		blastRadiusCmd,
		configCmd,
		noteCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
