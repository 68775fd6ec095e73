package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects every schema step; each file registers itself under
// the version prefix of its name.
var Migrations = migrate.NewMigrations()
