package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/middleware"
	gormstore "github.com/doodlesbykumbi/seek-in-go/pkg/server/store/gorm"
)

// tokenIssueCmd represents the token issue command
var tokenIssueCmd = &cobra.Command{
	Use:   "issue <login>",
	Short: "Issue a session token for a user",
	Long: `Sign a session token for a user without their password, for scripts
talking to the API. The token is printed to stdout and is sent as
"Authorization: Bearer <token>".

The token is signed with SEEK_SESSION_SECRET, which must match the
server's.

Example:
  seekctl token issue olga
  seekctl token issue olga --ttl 24h`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := issueToken(args[0], ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token for %s: %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().Duration("ttl", 0, "token lifetime (default session_token_ttl)")
}

func issueToken(login string, ttl time.Duration) (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.SessionSecret == "" {
		return "", fmt.Errorf("%s is not set", config.EnvName("session_secret"))
	}
	if ttl <= 0 {
		ttl = cfg.TokenTTL()
	}

	database, err := connectDB()
	if err != nil {
		return "", err
	}
	users := gormstore.NewUsersStore(database)
	user, err := users.UserByLogin(login)
	if err != nil {
		return "", err
	}

	token, _, err := middleware.NewSessions([]byte(cfg.SessionSecret), ttl, users).Issue(user)
	return token, err
}
