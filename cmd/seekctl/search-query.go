package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/search"
	gormstore "github.com/doodlesbykumbi/seek-in-go/pkg/server/store/gorm"
)

// searchQueryCmd represents the search query command
var searchQueryCmd = &cobra.Command{
	Use:   "query <terms>",
	Short: "Run a catalog search",
	Long: `Run a search the way the /search endpoint does and list the matches
the user may view. Without --as the search runs anonymously.

Example:
  seekctl search query yeast
  seekctl search query "glucose uptake" --type data_files --as olga`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		searchType, _ := cmd.Flags().GetString("type")
		login, _ := cmd.Flags().GetString("as")

		if err := runQuery(cmd.Context(), args[0], searchType, login); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	searchCmd.AddCommand(searchQueryCmd)
	searchQueryCmd.Flags().String("type", "", "search_type, e.g. data_files (default all)")
	searchQueryCmd.Flags().String("as", "", "login of the user to search as")
}

func runQuery(ctx context.Context, query, searchType, login string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := connectDB()
	if err != nil {
		return err
	}
	c, err := newCatalog(cfg, database)
	if err != nil {
		return err
	}

	var user *model.User
	if login != "" {
		if user, err = gormstore.NewUsersStore(database).UserByLogin(login); err != nil {
			return fmt.Errorf("user %s: %w", login, err)
		}
	}

	result, err := c.searcher().Search(ctx, search.Request{Query: query, Type: searchType, User: user})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tID\tTITLE")
	for _, item := range result.All {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", item.ItemType(), item.ItemID(), item.ItemTitle())
	}
	_ = w.Flush()
	fmt.Printf("%d matches for %q\n", len(result.All), result.Query)
	return nil
}
