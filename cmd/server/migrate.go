package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/rcssa/match-api/internal/config"
	"github.com/rcssa/match-api/internal/platform/database"
	"github.com/rcssa/match-api/internal/platform/postgres"
	"github.com/rcssa/match-api/internal/platform/sqlite"
)

const driverMemory = "memory"

// migrator is the subset of *database.Migrator the CLI uses.
type migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Status(ctx context.Context) ([]database.MigrationStatus, error)
	Version(ctx context.Context) (int64, error)
}

// driverDSN returns the connection string and embedded migrations for a SQL driver.
func driverDSN(cfg config.DatabaseConfig) (string, fs.FS, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		return cfg.URL, postgres.Migrations(), nil
	case database.DriverSQLite:
		return sqlite.DSN(cfg.URL), sqlite.Migrations(), nil
	default:
		return "", nil, fmt.Errorf("%w: %q has no schema to migrate", database.ErrUnsupportedDriver, cfg.Driver)
	}
}

// openDatabase opens a pool for the configured SQL driver and, when migrate
// is set, applies pending migrations.
func openDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
	migrate bool,
	log *slog.Logger,
) (*database.Handle, error) {
	dsn, migrations, err := driverDSN(cfg)
	if err != nil {
		return nil, err
	}

	h, err := database.Open(ctx, cfg.Driver, dsn, database.OptionsFromConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	if !migrate {
		return h, nil
	}

	m, err := database.NewMigrator(h.DB(), cfg.Driver, migrations, log)
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	if err := m.Up(ctx); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

// openMigrator opens the configured database and returns a migrator for it
// along with a function that closes the connection.
func openMigrator(
	ctx context.Context,
	cfg config.DatabaseConfig,
	log *slog.Logger,
) (migrator, func(), error) {
	h, err := openDatabase(ctx, cfg, false, log)
	if err != nil {
		return nil, nil, err
	}
	_, migrations, _ := driverDSN(cfg)

	m, err := database.NewMigrator(h.DB(), cfg.Driver, migrations, log)
	if err != nil {
		_ = h.Close()
		return nil, nil, err
	}
	return m, func() {
		if err := h.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}, nil
}
