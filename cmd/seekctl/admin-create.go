package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
	"github.com/doodlesbykumbi/seek-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/seek-in-go/pkg/server/store/gorm"
)

// adminCreateCmd represents the admin create command
var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator with a profile",
	Long: `Create a login account with administrator rights, together with its
person profile.

Without --password a random password is generated and printed to stdout.
The password may also be passed in SEEK_ADMIN_PASSWORD.

Example:
  seekctl admin create --login admin --email admin@example.org
  seekctl admin create --login olga --email olga@example.org --first-name Olga --last-name Krebs`,
	Run: func(cmd *cobra.Command, args []string) {
		login, _ := cmd.Flags().GetString("login")
		email, _ := cmd.Flags().GetString("email")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("SEEK_ADMIN_PASSWORD")
		}

		generated, err := createAdmin(login, email, firstName, lastName, password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", login, err)
			os.Exit(1)
		}
		if generated != "" {
			fmt.Println(generated)
		}
	},
}

func init() {
	adminCmd.AddCommand(adminCreateCmd)
	adminCreateCmd.Flags().String("login", "", "login name")
	adminCreateCmd.Flags().String("email", "", "email address")
	adminCreateCmd.Flags().String("first-name", "Admin", "first name of the profile")
	adminCreateCmd.Flags().String("last-name", "", "last name of the profile")
	adminCreateCmd.Flags().String("password", "", "password (generated when blank)")
	_ = adminCreateCmd.MarkFlagRequired("login")
	_ = adminCreateCmd.MarkFlagRequired("email")
}

// createAdmin returns the password when it had to generate one
func createAdmin(login, email, firstName, lastName, password string) (string, error) {
	database, err := connectDB()
	if err != nil {
		return "", err
	}
	users := gormstore.NewUsersStore(database)

	if _, err := users.UserByLogin(login); err == nil {
		return "", fmt.Errorf("login %s is taken", login)
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	generated := ""
	if password == "" {
		if password, err = randomPassword(); err != nil {
			return "", err
		}
		generated = password
	}

	user := &model.User{Login: login, Email: email, IsAdmin: true}
	if err := user.SetPassword(password); err != nil {
		return "", err
	}
	person := &model.Person{FirstName: firstName, LastName: lastName, Email: email}
	if err := users.CreateUser(user, person); err != nil {
		return "", err
	}
	return generated, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
