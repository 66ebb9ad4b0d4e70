package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/migration"
)

var errUsage = errors.New("usage")

// migrator is the subset of migration.Migrator the commands drive
type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Force(version int) error
}

func main() {
	migrationsPath := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	code := 0
	if err := execute(*migrationsPath, args, log); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	os.Exit(code)
}

func execute(migrationsPath string, args []string, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Info("Migration CLI started",
		zap.String("command", args[0]),
		zap.String("database", cfg.Database.DBName),
	)
	return run(m, args, log)
}

// run dispatches one CLI command against m
func run(m migrator, args []string, log *zap.Logger) error {
	switch args[0] {
	case "up":
		return m.Up()

	case "down":
		steps, err := optionalInt(args, 0)
		if err != nil || steps < 0 {
			return fmt.Errorf("%w: down takes a non-negative step count", errUsage)
		}
		return m.Down(steps)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("%w: force requires a version", errUsage)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: invalid version %q", errUsage, args[1])
		}
		return m.Force(version)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

// optionalInt parses args[1] when present
func optionalInt(args []string, fallback int) (int, error) {
	if len(args) < 2 {
		return fallback, nil
	}
	return strconv.Atoi(args[1])
}

func printUsage() {
	fmt.Println(`Fulfillment Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down [n]          Roll back n migrations (all when omitted)
  version           Show current migration version
  force <version>   Force set migration version after a failed run

Flags:
  -path string      Read migrations from a directory instead of the embedded set
  -log-level string Log level: debug, info, warn, error (default: info)

Connection settings come from config.toml or SELLERDESK_DATABASE_* variables.`)
}
