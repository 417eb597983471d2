package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 3, "max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	results, err := api.SearchKnowledge(context.Background(), args[0], locale, searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching knowledge found.")
		return nil
	}

	for _, snippet := range results {
		fmt.Printf("%-14s (%s, score %.2f)\n  %s\n", snippet.ID, snippet.Category, snippet.Score, snippet.Content)
	}
	return nil
}
