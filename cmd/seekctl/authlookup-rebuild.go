package main

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/authz"
	"github.com/doodlesbykumbi/seek-in-go/pkg/jobs"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// authlookupRebuildCmd represents the authlookup rebuild command
var authlookupRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute the auth lookup table",
	Long: `Recompute the cached authorization decision of every user for every
item of the given types. Without --type every policy controlled type is
rebuilt.

With --queue only the entries waiting in the auth lookup update queue are
processed.

Example:
  seekctl authlookup rebuild
  seekctl authlookup rebuild --type DataFile
  seekctl authlookup rebuild --queue`,
	Run: func(cmd *cobra.Command, args []string) {
		types, _ := cmd.Flags().GetStringSlice("type")
		queueOnly, _ := cmd.Flags().GetBool("queue")

		count, err := rebuildAuthLookups(types, queueOnly)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Rebuild failed after %d items: %v\n", count, err)
			os.Exit(1)
		}
		fmt.Printf("Rebuilt %d items\n", count)
	},
}

func init() {
	authlookupCmd.AddCommand(authlookupRebuildCmd)
	authlookupRebuildCmd.Flags().StringSlice("type", nil, "item type to rebuild (repeatable)")
	authlookupRebuildCmd.Flags().Bool("queue", false, "only drain the update queue")
}

func rebuildAuthLookups(types []string, queueOnly bool) (int, error) {
	database, err := connectDB()
	if err != nil {
		return 0, err
	}
	authorizer := authz.NewAuthorizer(authz.NewGormStore(database))

	if queueOnly {
		return jobs.NewManager().RunNow(jobs.AuthLookupJob, jobs.AuthLookup(authorizer))
	}

	known := model.AuthorizableTypes()
	if len(types) == 0 {
		types = known
	}
	if unknown := lo.Without(types, known...); len(unknown) > 0 {
		return 0, fmt.Errorf("not policy controlled: %v", unknown)
	}
	return authorizer.RebuildAll(types)
}
