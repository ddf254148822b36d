package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	"github.com/Black-And-White-Club/quote-bot/config"
	"github.com/Black-And-White-Club/quote-bot/internal/database"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cliApp := &cli.App{
		Name:     "bun",
		Usage:    "manage quote-bot database migrations",
		Commands: []*cli.Command{newMultiModuleDBCommand(database.Migrators(db))},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

// moduleFlag restricts a command to one module.
var moduleFlag = &cli.StringFlag{
	Name:    "module",
	Aliases: []string{"m"},
	Usage:   "only act on this module",
}

func newMultiModuleDBCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			initCommand(migrators),
			migrateCommand(migrators),
			rollbackCommand(migrators),
			unlockCommand(migrators),
			createGoCommand(migrators),
			createSQLCommand(migrators),
			statusCommand(migrators),
		},
	}
}

func initCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create migration tables",
		Flags: []cli.Flag{moduleFlag},
		Action: func(c *cli.Context) error {
			return forSelected(c, migrators, func(out io.Writer, name string, m *migrate.Migrator) error {
				if err := m.Init(c.Context); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: migration tables ready\n", name)
				return nil
			})
		},
	}
}

func migrateCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending migrations",
		Flags: []cli.Flag{moduleFlag},
		Action: func(c *cli.Context) error {
			return forSelected(c, migrators, func(out io.Writer, name string, m *migrate.Migrator) error {
				if err := m.Lock(c.Context); err != nil {
					return err
				}
				defer func() { _ = m.Unlock(c.Context) }()

				group, err := m.Migrate(c.Context)
				if err != nil {
					return err
				}
				if group.IsZero() {
					fmt.Fprintf(out, "%s: nothing to migrate\n", name)
					return nil
				}
				fmt.Fprintf(out, "%s: migrated to %s\n", name, group)
				return nil
			})
		},
	}
}

func rollbackCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "rollback",
		Usage: "roll back the last migration group",
		Flags: []cli.Flag{moduleFlag},
		Action: func(c *cli.Context) error {
			return forSelected(c, migrators, func(out io.Writer, name string, m *migrate.Migrator) error {
				if err := m.Lock(c.Context); err != nil {
					return err
				}
				defer func() { _ = m.Unlock(c.Context) }()

				group, err := m.Rollback(c.Context)
				if err != nil {
					return err
				}
				if group.IsZero() {
					fmt.Fprintf(out, "%s: nothing to roll back\n", name)
					return nil
				}
				fmt.Fprintf(out, "%s: rolled back %s\n", name, group)
				return nil
			})
		},
	}
}

func unlockCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "unlock",
		Usage: "release a lock left by an interrupted run",
		Flags: []cli.Flag{moduleFlag},
		Action: func(c *cli.Context) error {
			return forSelected(c, migrators, func(out io.Writer, name string, m *migrate.Migrator) error {
				if err := m.Unlock(c.Context); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: unlocked\n", name)
				return nil
			})
		},
	}
}

func createGoCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:      "create_go",
		Usage:     "create a Go migration",
		ArgsUsage: "<module> <name...>",
		Action: func(c *cli.Context) error {
			moduleName, migrator, err := lookupModule(migrators, c.Args().First())
			if err != nil {
				return err
			}
			mf, err := migrator.CreateGoMigration(c.Context, migrationName(c))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s: created %s (%s)\n", moduleName, mf.Name, mf.Path)
			return nil
		},
	}
}

func createSQLCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:      "create_sql",
		Usage:     "create up and down SQL migrations",
		ArgsUsage: "<module> <name...>",
		Action: func(c *cli.Context) error {
			moduleName, migrator, err := lookupModule(migrators, c.Args().First())
			if err != nil {
				return err
			}
			files, err := migrator.CreateSQLMigrations(c.Context, migrationName(c))
			if err != nil {
				return err
			}
			for _, mf := range files {
				fmt.Fprintf(c.App.Writer, "%s: created %s (%s)\n", moduleName, mf.Name, mf.Path)
			}
			return nil
		},
	}
}

func statusCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "print applied and pending migrations",
		Flags: []cli.Flag{moduleFlag},
		Action: func(c *cli.Context) error {
			return forSelected(c, migrators, func(out io.Writer, name string, m *migrate.Migrator) error {
				ms, err := m.MigrationsWithStatus(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s:\n  applied:   %s\n  unapplied: %s\n", name, ms.Applied(), ms.Unapplied())
				return nil
			})
		},
	}
}

// migrationName joins every argument after the module into one snake_case
// file name.
func migrationName(c *cli.Context) string {
	return strings.Join(c.Args().Tail(), "_")
}

// moduleNames returns the migrator keys in a stable order.
func moduleNames(migrators map[string]*migrate.Migrator) []string {
	names := make([]string, 0, len(migrators))
	for name := range migrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// forEachModule runs fn for every module in order, stopping at the first error.
func forEachModule(migrators map[string]*migrate.Migrator, fn func(name string, m *migrate.Migrator) error) error {
	for _, name := range moduleNames(migrators) {
		if err := fn(name, migrators[name]); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
	}
	return nil
}

// forSelected runs fn for the module named by --module, or for all of them.
func forSelected(c *cli.Context, migrators map[string]*migrate.Migrator, fn func(out io.Writer, name string, m *migrate.Migrator) error) error {
	out := c.App.Writer
	if only := c.String(moduleFlag.Name); only != "" {
		name, m, err := lookupModule(migrators, only)
		if err != nil {
			return err
		}
		migrators = map[string]*migrate.Migrator{name: m}
	}
	return forEachModule(migrators, func(name string, m *migrate.Migrator) error {
		return fn(out, name, m)
	})
}

func lookupModule(migrators map[string]*migrate.Migrator, moduleName string) (string, *migrate.Migrator, error) {
	migrator, ok := migrators[moduleName]
	if !ok {
		return "", nil, fmt.Errorf("invalid module name: %q", moduleName)
	}
	return moduleName, migrator, nil
}
