package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage the search index",
	Long:  `Rebuild and query the full text search index.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'search' requires a subcommand (reindex, query)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
