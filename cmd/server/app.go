package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcssa/match-api/internal/config"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/events"
	"github.com/rcssa/match-api/internal/health"
	"github.com/rcssa/match-api/internal/matching"
	"github.com/rcssa/match-api/internal/platform/database"
	"github.com/rcssa/match-api/internal/platform/otel"
	"github.com/rcssa/match-api/internal/platform/postgres"
	"github.com/rcssa/match-api/internal/platform/sqlite"
	"github.com/rcssa/match-api/internal/service"
	"github.com/rcssa/match-api/internal/store"
	"github.com/rcssa/match-api/internal/store/memory"
)

// appOptions are startup switches that come from command-line flags rather
// than configuration.
type appOptions struct {
	migrate bool
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil for the memory driver
	db       *database.Handle
	profiles store.ProfileStore

	rules          domain.ProfileRules
	profileService service.ProfileService
	eventEmitter   *events.InMemoryEventEmitter

	monitor         *health.Monitor
	shutdownTracing func(context.Context) error
}

// newApplication creates a new application instance with all dependencies initialized.
// On error every resource opened so far is released.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	opts appOptions,
) (_ *application, err error) {
	app := &application{
		config: cfg,
		logger: logger,
		rules: domain.ProfileRules{
			Majors:            domain.NewMajorCatalog(cfg.Matching.Majors),
			MinGraduationYear: cfg.Matching.MinGraduationYear,
			MaxGraduationYear: cfg.Matching.MaxGraduationYear,
		},
	}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	app.shutdownTracing, err = otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		logger.Info("tracing enabled", "service_name", cfg.Telemetry.ServiceName)
	}

	if err := app.setupStore(ctx, opts); err != nil {
		return nil, err
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))

	engine := matching.NewEngine(app.profiles, matching.Options{
		MaxAttempts: cfg.Matching.MaxAttempts,
	}, logger)
	app.profileService = service.NewProfileService(app.profiles, engine, app.rules, app.eventEmitter, logger)

	if app.db != nil && cfg.Database.HealthCheckSchedule != "" {
		app.monitor = health.NewMonitor(app.db,
			time.Duration(cfg.Database.ConnectTimeoutSeconds)*time.Second, logger)
		if err := app.monitor.Start(cfg.Database.HealthCheckSchedule); err != nil {
			app.monitor = nil
			return nil, err
		}
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupStore opens the configured profile store.
func (app *application) setupStore(ctx context.Context, opts appOptions) error {
	cfg := app.config.Database
	log := app.logger

	switch cfg.Driver {
	case driverMemory:
		app.profiles = memory.NewProfileStore()
		log.Warn("using in-memory profile store, data is lost on restart")
		return nil

	case database.DriverSQLite:
		h, err := openDatabase(ctx, cfg, true, log)
		if err != nil {
			return fmt.Errorf("failed to open sqlite database: %w", err)
		}
		app.db = h
		app.profiles = sqlite.NewProfileStore(h, log)
		return nil

	case database.DriverPostgres:
		h, err := openDatabase(ctx, cfg, opts.migrate, log)
		if err != nil {
			return fmt.Errorf("failed to open postgres database: %w", err)
		}
		app.db = h
		app.profiles = postgres.NewPostgresProfileStore(h, log)
		return nil

	default:
		return fmt.Errorf("%w: %q", database.ErrUnsupportedDriver, cfg.Driver)
	}
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.monitor != nil {
		app.monitor.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	if app.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.shutdownTracing(ctx); err != nil {
			app.logger.Error("error flushing traces", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
