package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMigrations = fstest.MapFS{
	"00001_create_widgets.sql": {Data: []byte(`-- +goose Up
CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);

-- +goose Down
DROP TABLE widgets;
`)},
	"00002_add_widget_color.sql": {Data: []byte(`-- +goose Up
ALTER TABLE widgets ADD COLUMN color TEXT;

-- +goose Down
ALTER TABLE widgets DROP COLUMN color;
`)},
}

func TestMigrator(t *testing.T) {
	ctx := context.Background()
	h, err := Open(ctx, DriverSQLite, sqliteDSN(t), Options{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	m, err := NewMigrator(h.DB(), DriverSQLite, testMigrations, nil)
	require.NoError(t, err)

	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx), "up is idempotent")

	v, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = h.ExecContext(ctx, `INSERT INTO widgets (name, color) VALUES ('a', 'red')`)
	require.NoError(t, err)

	require.NoError(t, m.Down(ctx))
	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, int64(1), statuses[0].Version)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)
}

func TestNewMigrator_UnsupportedDriver(t *testing.T) {
	_, err := NewMigrator(nil, "memory", testMigrations, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
