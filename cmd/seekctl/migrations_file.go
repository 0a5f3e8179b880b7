//go:build !embed_migrations

package main

import (
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
)

const defaultMigrationsPath = "db/migrations"

func createMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	path := os.Getenv("SEEK_MIGRATIONS_PATH")
	if path == "" {
		path = defaultMigrationsPath
	}
	logging.Log.Debugf("Running migrations from file://%s", path)
	return migrate.New("file://"+path, dbURL)
}
