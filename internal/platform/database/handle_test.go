package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcssa/match-api/internal/config"
	"github.com/rcssa/match-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteDSN(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.DatabaseConfig{
		MaxOpenConns:           10,
		MaxIdleConns:           5,
		ConnMaxLifetimeMinutes: 3,
		ConnectTimeoutSeconds:  2,
	})

	assert.Equal(t, 10, opts.MaxOpenConns)
	assert.Equal(t, 5, opts.MaxIdleConns)
	assert.Equal(t, 3*time.Minute, opts.ConnMaxLifetime)
	assert.Equal(t, 2*time.Second, opts.ConnectTimeout)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "memory", "", Options{}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestHandle_Lifecycle(t *testing.T) {
	ctx := context.Background()
	h, err := Open(ctx, DriverSQLite, sqliteDSN(t), Options{MaxOpenConns: 2, ConnectTimeout: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	assert.Equal(t, DriverSQLite, h.Driver())
	require.NoError(t, h.HealthCheck(ctx))

	_, err = h.ExecContext(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = h.ExecContext(ctx, `INSERT INTO kv (k, v) VALUES (?, ?)`, "a", "1")
	require.NoError(t, err)

	old := h.DB()
	require.NoError(t, h.Reconnect(ctx))
	assert.NotSame(t, old, h.DB(), "reconnect should swap the pool")
	assert.Error(t, old.PingContext(ctx), "previous pool should be closed")

	// the file database survives the swap
	var v string
	require.NoError(t, h.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, "a").Scan(&v))
	assert.Equal(t, "1", v)

	require.NoError(t, h.Close())
	err = h.HealthCheck(ctx)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.ErrorIs(t, h.Reconnect(ctx), store.ErrUnavailable)
	assert.NoError(t, h.Close(), "closing twice is a no-op")
}

func TestHandle_BeginTx(t *testing.T) {
	ctx := context.Background()
	h, err := Open(ctx, DriverSQLite, sqliteDSN(t), Options{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	_, err = h.ExecContext(ctx, `CREATE TABLE counters (n INTEGER NOT NULL)`)
	require.NoError(t, err)

	err = store.RunInTransaction(ctx, h, nil, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO counters (n) VALUES (1)`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, h.QueryRowContext(ctx, `SELECT COUNT(*) FROM counters`).Scan(&n))
	assert.Equal(t, 1, n)
}
