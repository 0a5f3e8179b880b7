// Package db holds the SQL migrations. They are embedded into the binary
// when it is built with the embed_migrations tag.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
