package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rcssa/match-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{
			"email unique",
			&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: emailUniqueConstraint},
			store.ErrEmailExists,
		},
		{
			"institutional id unique",
			&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: institutionalIDUniqueConstraint},
			store.ErrInstitutionalIDExists,
		},
		{
			"primary key unique",
			&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "profiles_pkey"},
			store.ErrDuplicate,
		},
		{"serialization failure", &pgconn.PgError{Code: serializationFailureCode}, store.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: deadlockDetectedCode}, store.ErrConflict},
		{"lock not available", &pgconn.PgError{Code: lockNotAvailableCode}, store.ErrConflict},
		{
			"check violation",
			&pgconn.PgError{Code: checkViolationCode, ConstraintName: "profiles_match_state_check"},
			store.ErrInvalidEntity,
		},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "email"}, store.ErrInvalidEntity},
		{"connection failure", &pgconn.PgError{Code: "08006"}, store.ErrUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: adminShutdownCode}, store.ErrUnavailable},
		{"statement timeout", &pgconn.PgError{Code: queryCanceledCode}, store.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, store.ErrUnavailable},
		{"bad conn", driver.ErrBadConn, store.ErrUnavailable},
		{
			"network",
			&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			store.ErrUnavailable,
		},
		{
			"wrapped commit failure",
			fmt.Errorf("%w: %w", store.ErrTransactionFailed, &pgconn.PgError{Code: serializationFailureCode}),
			store.ErrConflict,
		},
		{"already mapped", store.ErrProfileNotFound, store.ErrProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tt.err), tt.want)
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, MapError(nil))

	plain := errors.New("something else")
	assert.Same(t, plain, MapError(plain))

	assert.ErrorIs(t, MapError(context.Canceled), context.Canceled)
	assert.NotErrorIs(t, MapError(context.Canceled), store.ErrUnavailable)

	unknown := &pgconn.PgError{Code: "42P01"}
	mapped := MapError(unknown)
	assert.NotErrorIs(t, mapped, store.ErrUnavailable)
	assert.NotErrorIs(t, mapped, store.ErrConflict)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	assert.NoError(t, checkRowsAffected(fakeResult{rows: 2}, 2))
	assert.ErrorIs(t, checkRowsAffected(fakeResult{rows: 1}, 2), store.ErrConflict)
	assert.ErrorIs(t, checkRowsAffected(fakeResult{rows: 0}, 2), store.ErrConflict)
	assert.Error(t, checkRowsAffected(fakeResult{err: errors.New("driver")}, 2))
}

func TestMigrations(t *testing.T) {
	data, err := Migrations().Open("00001_create_profiles.sql")
	if assert.NoError(t, err) {
		_ = data.Close()
	}
}
