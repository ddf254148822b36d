// Package database opens the bun connection for the configured driver and
// applies the schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	scoreboardmigrations "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/repositories/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
	DriverSQLite   = "sqlite"
)

// Open connects to the database described by driver and dsn. An empty
// driver selects PostgreSQL.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case "", DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case DriverPGX:
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open pgx: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// SQLite serializes writers; a single connection also keeps
		// ":memory:" databases alive for the life of the pool.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrators returns one migrator per module, keyed by module name.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	return map[string]*migrate.Migrator{
		"scoreboard": migrate.NewMigrator(db, scoreboardmigrations.Migrations),
	}
}

// Migrate creates the migration tables and applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	for name, migrator := range Migrators(db) {
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize migrations for %s: %w", name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", name))
			continue
		}
		logger.InfoContext(ctx, "Migrated module",
			slog.String("module", name),
			slog.String("group", group.String()),
		)
	}
	return nil
}
