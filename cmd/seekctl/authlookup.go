package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// authlookupCmd represents the authlookup command
var authlookupCmd = &cobra.Command{
	Use:   "authlookup",
	Short: "Manage the cached authorization decisions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'authlookup' requires a subcommand (rebuild)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(authlookupCmd)
}
