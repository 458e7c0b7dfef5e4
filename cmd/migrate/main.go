package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/infrastructure/migration"
	"github.com/apparel/storefront/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage")

// command runs against an open migrator; arg is the optional positional
// argument after the command name.
type command func(m *migration.Migrator, log *zap.Logger, arg string) error

var commands = map[string]command{
	"up":   func(m *migration.Migrator, _ *zap.Logger, _ string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ *zap.Logger, _ string) error { return m.Down() },
	"step": func(m *migration.Migrator, _ *zap.Logger, arg string) error {
		n, err := strconv.Atoi(arg)
		if err != nil || n == 0 {
			return fmt.Errorf("%w: migrate step <n>", errUsage)
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, _ *zap.Logger, arg string) error {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: migrate force <version>", errUsage)
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, log *zap.Logger, _ string) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	},
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.DateTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	err = run(log, *dir, flag.Arg(0), flag.Arg(1))
	_ = logger.Sync(log)
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(2)
	case err != nil:
		log.Error("Migration command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, dir, name, arg string) error {
	if name == "list" {
		names, err := migration.List(migrations.FS)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if dir != "" {
		m, err = migration.NewFromDir(db, dir, log)
	} else {
		m, err = migration.New(db, migrations.FS, log)
	}
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	return cmd(m, log, arg)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Storefront database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  step <n>          Apply n migrations (negative rolls back)
  force <version>   Set the version without migrating (clears a dirty state)
  version           Show the current version
  list              List the embedded migrations

Flags:
  -path string        Read migrations from a directory
  -log-level string   debug, info, warn, error (default: info)

Database settings come from config.toml and STOREFRONT_DATABASE_* variables.`)
}
