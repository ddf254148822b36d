package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the scoreboard schema, in registration order.
var Migrations = migrate.NewMigrations()
