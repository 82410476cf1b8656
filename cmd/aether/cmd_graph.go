package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aether/internal/config"
	"aether/internal/indexer"
	"aether/internal/search"
)

var callersCmd = &cobra.Command{
	Use:   "callers <qualified_name>",
	Short: "List symbols that call the given qualified name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSurface(func(s *search.Surface) error {
			symbols, err := s.Callers(args[0])
			if err != nil {
				return err
			}
			fmt.Print(search.FormatTSV(symbols))
			return nil
		})
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps <symbol_id>",
	Short: "List symbols a given symbol depends on via call edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSurface(func(s *search.Surface) error {
			symbols, err := s.Dependencies(args[0])
			if err != nil {
				return err
			}
			fmt.Print(search.FormatTSV(symbols))
			return nil
		})
	},
}

var chainDepth int

var chainCmd = &cobra.Command{
	Use:   "chain <symbol_id>",
	Short: "Print the breadth-first call chain from a symbol, one level per block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSurface(func(s *search.Surface) error {
			levels, err := s.CallChain(args[0], chainDepth)
			if err != nil {
				return err
			}
			for i, level := range levels {
				fmt.Printf("--- depth %d ---\n", i+1)
				fmt.Print(search.FormatTSV(level))
			}
			return nil
		})
	},
}

var blastDepth int

var blastRadiusCmd = &cobra.Command{
	Use:   "blast-radius <symbol_id>",
	Short: "Print every symbol that can reach the given symbol within N hops of calls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSurface(func(s *search.Surface) error {
			symbols, err := s.BlastRadius(args[0], blastDepth)
			if err != nil {
				return err
			}
			fmt.Print(search.FormatTSV(symbols))
			return nil
		})
	},
}

func init() {
	chainCmd.Flags().IntVar(&chainDepth, "depth", 3, "maximum BFS depth")
	blastRadiusCmd.Flags().IntVar(&blastDepth, "depth", 3, "maximum BFS depth")
}

// withSurface boots the indexer's read-only query surface for the
// current workspace, runs fn, and always closes the store afterward —
// shared by every graph-query subcommand.
func withSurface(fn func(*search.Surface) error) error {
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

	return fn(idx.Search)
}
