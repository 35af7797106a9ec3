package postgres

import "embed"

// MigrationsDir is the directory of the SQL migrations within MigrationsFS.
const MigrationsDir = "migrations"

// MigrationsFS holds the goose SQL migrations for the reference store.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
