package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
)

// searchReindexCmd represents the search reindex command
var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push catalog items to the search index",
	Long: `Push every item of the given types to the search index, creating the
index schema first if needed. Without --type every searchable type is
reindexed.

With --queue only the items waiting in the reindexing queue are indexed.

Example:
  seekctl search reindex
  seekctl search reindex --type DataFile --type Sop
  seekctl search reindex --queue`,
	Run: func(cmd *cobra.Command, args []string) {
		types, _ := cmd.Flags().GetStringSlice("type")
		queueOnly, _ := cmd.Flags().GetBool("queue")

		count, err := reindex(cmd.Context(), types, queueOnly)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reindexing failed after %d items: %v\n", count, err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d items\n", count)
	},
}

func init() {
	searchCmd.AddCommand(searchReindexCmd)
	searchReindexCmd.Flags().StringSlice("type", nil, "item type to reindex (repeatable)")
	searchReindexCmd.Flags().Bool("queue", false, "only drain the reindexing queue")
}

func reindex(ctx context.Context, types []string, queueOnly bool) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	database, err := connectDB()
	if err != nil {
		return 0, err
	}
	c, err := newCatalog(cfg, database)
	if err != nil {
		return 0, err
	}
	if err := c.index.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	indexer := c.indexer()
	if queueOnly {
		total := 0
		for {
			n, err := indexer.ProcessQueue(ctx, search.BatchSize)
			total += n
			if err != nil || n < search.BatchSize {
				return total, err
			}
		}
	}

	if len(types) == 0 {
		types = search.SearchableTypes(false)
	}
	for i, t := range types {
		types[i] = search.TypeName(t)
	}
	return indexer.Reindex(ctx, types)
}
