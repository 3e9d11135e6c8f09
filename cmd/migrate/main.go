package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bizdir/backend/internal/infrastructure/config"
	"github.com/bizdir/backend/internal/infrastructure/logger"
	"github.com/bizdir/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errMissingArgument = errors.New("missing argument")

// runner carries what every command needs
type runner struct {
	log  *zap.Logger
	path string
}

func main() {
	r := &runner{}
	app := &cli.Command{
		Name:  "migrate",
		Usage: "Manage the business directory database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Path to the migrations directory",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Before: r.setup,
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: r.withMigrator(func(_ *cli.Command, m *migration.Migrator) error { return m.Up() }),
			},
			{
				Name:   "down",
				Usage:  "Roll back all migrations",
				Action: r.withMigrator(func(_ *cli.Command, m *migration.Migrator) error { return m.Down() }),
			},
			{
				Name:      "steps",
				Usage:     "Apply n migrations; negative n rolls back",
				ArgsUsage: "-- <n>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "n"}},
				Action: r.withMigrator(func(cmd *cli.Command, m *migration.Migrator) error {
					n, err := strconv.Atoi(cmd.StringArg("n"))
					if err != nil || n == 0 {
						return fmt.Errorf("%w: steps needs a non-zero integer", errMissingArgument)
					}
					return m.Steps(n)
				}),
			},
			{
				Name:      "goto",
				Usage:     "Migrate up or down to a specific version",
				ArgsUsage: "<version>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "version"}},
				Action: r.withMigrator(func(cmd *cli.Command, m *migration.Migrator) error {
					v, err := strconv.ParseUint(cmd.StringArg("version"), 10, 32)
					if err != nil {
						return fmt.Errorf("%w: goto needs a version number", errMissingArgument)
					}
					return m.GoTo(uint(v))
				}),
			},
			{
				Name:  "version",
				Usage: "Show the applied version",
				Action: r.withMigrator(func(_ *cli.Command, m *migration.Migrator) error {
					status, err := m.Version()
					if err != nil {
						return err
					}
					if status.Version == 0 {
						r.log.Info("No migrations applied")
						return nil
					}
					r.log.Info("Current migration version",
						zap.Uint("version", status.Version),
						zap.Bool("dirty", status.Dirty))
					return nil
				}),
			},
			{
				Name:      "force",
				Usage:     "Mark a version as applied without running it (clears a dirty state)",
				ArgsUsage: "<version>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "version"}},
				Action: r.withMigrator(func(cmd *cli.Command, m *migration.Migrator) error {
					v, err := strconv.Atoi(cmd.StringArg("version"))
					if err != nil {
						return fmt.Errorf("%w: force needs a version number", errMissingArgument)
					}
					return m.Force(v)
				}),
			},
			{
				Name:      "create",
				Usage:     "Write the next up/down migration pair",
				ArgsUsage: "<name> [description]",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
					&cli.StringArg{Name: "description"},
				},
				Action: r.create,
			},
			{
				Name:   "list",
				Usage:  "List migration files",
				Action: r.list,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if r.log != nil {
			r.log.Fatal("Migration command failed", zap.Error(err))
		}
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

// setup builds the logger and resolves the migrations directory
func (r *runner) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	log, err := logger.New(&logger.Config{
		Level:  cmd.String("log-level"),
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to initialize logger: %w", err)
	}
	r.log = log

	path, err := filepath.Abs(resolvePath(cmd.String("path")))
	if err != nil {
		return ctx, fmt.Errorf("failed to resolve migrations path: %w", err)
	}
	r.path = path
	return ctx, nil
}

// resolvePath prefers an explicit path, then ./migrations, then the
// directory two levels above the binary
func resolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return defaultMigrationsPath
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return defaultMigrationsPath
}

// withMigrator opens the database for commands that touch the schema
func (r *runner) withMigrator(fn func(*cli.Command, *migration.Migrator) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		m, err := migration.New(db, r.path, r.log)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				r.log.Warn("Failed to close migrator", zap.Error(err))
			}
		}()

		r.log.Info("Running migration command",
			zap.String("command", cmd.Name),
			zap.String("migrations_path", r.path))
		return fn(cmd, m)
	}
}

func (r *runner) create(_ context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: create needs a migration name", errMissingArgument)
	}
	f, err := migration.Create(r.path, name, cmd.StringArg("description"))
	if err != nil {
		return err
	}
	r.log.Info("Migration created",
		zap.String("version", f.Version),
		zap.String("up_file", f.UpPath),
		zap.String("down_file", f.DownPath))
	return nil
}

func (r *runner) list(_ context.Context, _ *cli.Command) error {
	entries, err := migration.List(r.path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		r.log.Info("No migrations found", zap.String("path", r.path))
		return nil
	}
	for _, e := range entries {
		mark := ""
		if !e.HasDown {
			mark = " (no down)"
		}
		fmt.Printf("  %06d %s%s\n", e.Number, e.Name, mark)
	}
	return nil
}
