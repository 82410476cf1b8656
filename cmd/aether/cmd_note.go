package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aether/internal/config"
	"aether/internal/indexer"
)

var noteTags string

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Store and search free-text notes alongside the symbol graph",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Store a note, embedding it if [embeddings] is enabled",
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

		var tags []string
		if noteTags != "" {
			tags = strings.Split(noteTags, ",")
		}

		id, err := idx.Search.AddNote(context.Background(), args[0], tags)
		if err != nil {
			return fmt.Errorf("add note: %w", err)
		}
		fmt.Println(id)
		return nil
	},
}

var noteSearchLimit int

var noteSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes by substring",
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

		notes, err := idx.Search.SearchNotes(args[0], noteSearchLimit)
		if err != nil {
			return fmt.Errorf("search notes: %w", err)
		}
		for _, n := range notes {
			fmt.Printf("%s\t%s\n", n.ID, n.Content)
		}
		return nil
	},
}

func init() {
	noteAddCmd.Flags().StringVar(&noteTags, "tags", "", "comma-separated tags")
	noteSearchCmd.Flags().IntVar(&noteSearchLimit, "limit", 20, "maximum number of results")
	noteCmd.AddCommand(noteAddCmd, noteSearchCmd)
}
