package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// auditPruneCmd represents the audit prune command
var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old audit events",
	Long: `Delete audit events older than the given age.

Example:
  seekctl audit prune --older-than 2160h`,
	Run: func(cmd *cobra.Command, args []string) {
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			fmt.Fprintln(os.Stderr, "--older-than must be positive")
			os.Exit(1)
		}

		store, err := openAuditStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open audit database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		n, err := store.Prune(context.Background(), time.Now().Add(-age))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prune: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted %d audit events\n", n)
	},
}

func init() {
	auditCmd.AddCommand(auditPruneCmd)
	auditPruneCmd.Flags().Duration("older-than", 90*24*time.Hour, "age of the oldest event to keep")
}
