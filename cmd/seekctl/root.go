package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "seekctl",
	Short: "Run and manage a SEEK catalog server",
	Long: `Run and manage a SEEK catalog server.

Environment variables are read from the files given with --env-file
(default .env) before the configuration is loaded. Variables already set
in the environment take precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringSlice("env-file")
		if err := loadEnvFiles(files); err != nil {
			return err
		}
		logging.SetLevel(os.Getenv("SEEK_LOG_LEVEL"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "environment files to load")
}

// loadEnvFiles loads each file that exists. Missing files are skipped.
func loadEnvFiles(files []string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
