package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/audit"
)

// auditHistoryCmd represents the audit history command
var auditHistoryCmd = &cobra.Command{
	Use:   "history <type> <id>",
	Short: "Show the audit trail of an item",
	Long: `Print the newest audit events about one item: who viewed, changed,
downloaded or exported it and whether they were allowed to.

Example:
  seekctl audit history Node 3
  seekctl audit history Publication 12 --limit 100`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openAuditStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open audit database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		messages, err := store.History(context.Background(), args[0], args[1], limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read audit history: %v\n", err)
			os.Exit(1)
		}
		if len(messages) == 0 {
			fmt.Printf("No audit events for %s %s\n", args[0], args[1])
			return
		}
		printAuditMessages(os.Stdout, messages)
	},
}

func init() {
	auditCmd.AddCommand(auditHistoryCmd)
	auditHistoryCmd.Flags().Int("limit", 50, "maximum number of events")
}

func printAuditMessages(out io.Writer, messages []audit.Message) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tUSER\tRESULT\tMESSAGE")
	for _, m := range messages {
		user := m.Sdata[audit.SDIDAuth]["user"]
		result := m.Sdata[audit.SDIDAction]["result"]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.Timestamp.Local().Format("2006-01-02 15:04:05"), m.Msgid, user, result,
			strings.ReplaceAll(m.Message, "\n", " "))
	}
	_ = w.Flush()
}
