package testdb

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/rcssa/match-api/internal/platform/database"
	"github.com/rcssa/match-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// GetTestDatabaseURL returns the database URL for tests.
// It checks DATABASE_URL and MATCH_TEST_DB_URL in that order.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("MATCH_TEST_DB_URL")
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// OpenHandle opens a database.Handle on the test database, applies the
// migrations and empties the profiles table. The test is skipped when no
// database URL is configured. The handle is closed on cleanup.
func OpenHandle(t *testing.T) *database.Handle {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or MATCH_TEST_DB_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	h, err := database.Open(ctx, database.DriverPostgres, dbURL, database.Options{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectTimeout:  TestTimeout,
	}, nil)
	require.NoError(t, err, "failed to connect to %s", MaskDatabaseURL(dbURL))
	t.Cleanup(func() {
		if err := h.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	SetupTestDatabaseSchema(t, h.DB())
	ResetProfiles(t, h.DB())
	return h
}

// SetupTestDatabaseSchema applies every pending migration.
func SetupTestDatabaseSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	m, err := database.NewMigrator(db, database.DriverPostgres, postgres.Migrations(), nil)
	require.NoError(t, err, "failed to create migrator")

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, m.Up(ctx), "failed to run migrations")
}

// ResetProfiles deletes every profile row.
func ResetProfiles(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`TRUNCATE profiles`)
	require.NoError(t, err, "failed to truncate profiles")
}

// MaskDatabaseURL hides the password in a connection URL for logs.
func MaskDatabaseURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return dbURL
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
