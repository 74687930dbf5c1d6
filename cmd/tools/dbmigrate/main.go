// cmd/tools/dbmigrate/main.go
package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/EscalationLeague/internal/db"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "Path to SQLite database")
		command = flag.String("command", "", "Command to run (up, down, steps, version, force)")
		steps   = flag.Int("steps", 0, "Number of migrations for the steps command (negative rolls back)")
		version = flag.Int("version", -1, "Version for the force command")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dbPath == "" || *command == "" {
		log.Error().Msg("The -db and -command flags are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	absDB, err := filepath.Abs(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("Invalid database path")
	}

	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	m, err := db.NewMigrator(absDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}
	defer m.Close()

	logger := log.With().Str("db", absDB).Str("command", *command).Logger()

	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logger.Info().Msg("Successfully ran migrations up")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		logger.Info().Msg("Successfully ran migrations down")

	case "steps":
		if *steps == 0 {
			logger.Fatal().Msg("The -steps flag must be non-zero")
		}
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Int("steps", *steps).Msg("Failed to apply migration steps")
		}
		logger.Info().Int("steps", *steps).Msg("Successfully applied migration steps")

	case "version":
		current, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info().Msg("No migrations applied")
				return
			}
			logger.Fatal().Err(err).Msg("Failed to get version")
		}
		logger.Info().Uint("version", current).Bool("dirty", dirty).Msg("Current migration version")

	case "force":
		if *version < 0 {
			logger.Fatal().Msg("The -version flag is required for force")
		}
		if err := m.Force(*version); err != nil {
			logger.Fatal().Err(err).Int("version", *version).Msg("Failed to force version")
		}
		logger.Info().Int("version", *version).Msg("Forced migration version")

	default:
		logger.Fatal().Msg("Unknown command")
	}
}
