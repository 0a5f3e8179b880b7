package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read and prune the audit database",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'audit' requires a subcommand (history, prune)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func openAuditStore() (*audit.Store, error) {
	store, err := audit.NewStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("SEEK_AUDIT_DATABASE_URL is not set")
	}
	return store, nil
}
