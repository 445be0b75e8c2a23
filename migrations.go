package mavericks

import "embed"

// MigrationsFS holds the SQL migrations for the postgres credential store.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
