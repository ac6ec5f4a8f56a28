// Package migrations embeds the numbered schema files for each supported
// database driver.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// SQLite returns the migration files for the sqlite driver
func SQLite() fs.FS {
	sub, err := fs.Sub(FS, "sqlite")
	if err != nil {
		panic(err)
	}
	return sub
}

// Postgres returns the migration files for the postgres driver
func Postgres() fs.FS {
	sub, err := fs.Sub(FS, "postgres")
	if err != nil {
		panic(err)
	}
	return sub
}
