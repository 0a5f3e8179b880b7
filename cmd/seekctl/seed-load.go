package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/db"
)

// seedLoadCmd represents the seed load command
var seedLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Create the people, projects and programmes of a seed file",
	Long: `Create the institutions, projects, programmes and people described in a
YAML seed file. Rows that already exist, matched by title, email or
login, are left alone, so a seed file can be loaded more than once.

Use --check to validate the file without touching the database.

Example:
  seekctl seed load seed.yml
  seekctl seed load seed.yml --check`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		check, _ := cmd.Flags().GetBool("check")

		if err := loadSeedFile(args[0], check); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", args[0], err)
			os.Exit(1)
		}
	},
}

func init() {
	seedCmd.AddCommand(seedLoadCmd)
	seedLoadCmd.Flags().Bool("check", false, "validate the file only")
}

func loadSeedFile(path string, check bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	seed, err := db.ParseSeed(f)
	if err != nil {
		return err
	}
	if check {
		fmt.Println("Seed file is valid.")
		return nil
	}

	database, err := connectDB()
	if err != nil {
		return err
	}
	result, err := db.LoadSeed(database, seed)
	if err != nil {
		return err
	}
	fmt.Printf("Created %d programmes, %d institutions, %d projects, %d work groups, %d people, %d users, %d memberships\n",
		result.Programmes, result.Institutions, result.Projects, result.WorkGroups,
		result.People, result.Users, result.Memberships)
	return nil
}
