package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/rcssa/match-api/internal/config"
	"github.com/rcssa/match-api/internal/store"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Supported backends, as named in config.DatabaseConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnsupportedDriver is returned for drivers that have no SQL pool.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Options configures the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// OptionsFromConfig converts database settings into pool options.
func OptionsFromConfig(cfg config.DatabaseConfig) Options {
	return Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnectTimeout:  time.Duration(cfg.ConnectTimeoutSeconds) * time.Second,
	}
}

// Handle wraps a *sql.DB that can be swapped for a fresh pool by Reconnect.
// It satisfies store.Conn, so stores built on it follow reconnects.
type Handle struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
	driver string
	dsn    string
	opts   Options
	logger *slog.Logger
}

var _ store.Conn = (*Handle)(nil)

// sqlDriverName maps a configured backend to its database/sql driver name.
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Open creates a pool for driver and verifies it with a ping.
func Open(ctx context.Context, driver, dsn string, opts Options, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handle{
		driver: driver,
		dsn:    dsn,
		opts:   opts,
		logger: logger.With(slog.String("component", "database"), slog.String("driver", driver)),
	}

	db, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	h.db = db

	h.logger.Info("database connection established",
		slog.Int("max_open_conns", opts.MaxOpenConns),
		slog.Int("max_idle_conns", opts.MaxIdleConns))
	return h, nil
}

func (h *Handle) open(ctx context.Context) (*sql.DB, error) {
	name, err := sqlDriverName(h.driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, h.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if h.opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(h.opts.MaxOpenConns)
	}
	if h.opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(h.opts.MaxIdleConns)
	}
	if h.opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(h.opts.ConnMaxLifetime)
	}

	if err := h.ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (h *Handle) ping(ctx context.Context, db *sql.DB) error {
	if h.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: failed to ping database: %w", store.ErrUnavailable, err)
	}
	return nil
}

// Driver returns the configured backend name.
func (h *Handle) Driver() string {
	return h.driver
}

// DB returns the current pool. Do not retain it across a Reconnect.
func (h *Handle) DB() *sql.DB {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.db
}

// HealthCheck pings the current pool. Failures wrap store.ErrUnavailable.
func (h *Handle) HealthCheck(ctx context.Context) error {
	h.mu.RLock()
	db, closed := h.db, h.closed
	h.mu.RUnlock()
	if closed {
		return fmt.Errorf("%w: database handle is closed", store.ErrUnavailable)
	}
	return h.ping(ctx, db)
}

// Reconnect opens a new pool and swaps it in. The old pool is closed once
// the swap is done. On failure the existing pool stays in place.
func (h *Handle) Reconnect(ctx context.Context) error {
	if h.isClosed() {
		return fmt.Errorf("%w: database handle is closed", store.ErrUnavailable)
	}
	db, err := h.open(ctx)
	if err != nil {
		h.logger.Error("reconnect failed", slog.String("error", err.Error()))
		return err
	}

	h.mu.Lock()
	old := h.db
	h.db = db
	h.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			h.logger.Warn("failed to close previous pool", slog.String("error", err.Error()))
		}
	}
	h.logger.Info("database reconnected")
	return nil
}

func (h *Handle) isClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

// Close closes the current pool. Later queries fail with the driver's
// closed-database error; HealthCheck and Reconnect report store.ErrUnavailable.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.db.Close()
}

// ExecContext implements store.DBTX.
func (h *Handle) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return h.DB().ExecContext(ctx, query, args...)
}

// PrepareContext implements store.DBTX.
func (h *Handle) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return h.DB().PrepareContext(ctx, query)
}

// QueryContext implements store.DBTX.
func (h *Handle) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return h.DB().QueryContext(ctx, query, args...)
}

// QueryRowContext implements store.DBTX.
func (h *Handle) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return h.DB().QueryRowContext(ctx, query, args...)
}

// BeginTx implements store.TxBeginner.
func (h *Handle) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return h.DB().BeginTx(ctx, opts)
}
