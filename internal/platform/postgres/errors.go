package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rcssa/match-api/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// serializationFailureCode is raised when a transaction cannot be serialized
	serializationFailureCode = "40001"

	// deadlockDetectedCode is raised when the server breaks a lock cycle
	deadlockDetectedCode = "40P01"

	// lockNotAvailableCode is raised by NOWAIT and lock_timeout
	lockNotAvailableCode = "55P03"

	// queryCanceledCode is raised by statement_timeout
	queryCanceledCode = "57014"

	// adminShutdownCode and cannotConnectNowCode are raised while the server restarts
	adminShutdownCode    = "57P01"
	cannotConnectNowCode = "57P03"

	// tooManyConnectionsCode is raised when the server's connection slots are full
	tooManyConnectionsCode = "53300"

	// connectionExceptionClass prefixes every connection failure code (class 08)
	connectionExceptionClass = "08"
)

// Unique constraint names from the profiles migration.
const (
	emailUniqueConstraint           = "profiles_email_unique"
	institutionalIDUniqueConstraint = "profiles_institutional_id_unique"
)

// MapError maps a database error to the store error taxonomy.
// It wraps the original error to preserve context for logs; callers should
// match on the store sentinels with errors.Is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	// Already mapped, e.g. returned from inside a transaction
	if isStoreError(err) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode:
			switch pgErr.ConstraintName {
			case emailUniqueConstraint:
				return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
			case institutionalIDUniqueConstraint:
				return fmt.Errorf("%w: %v", store.ErrInstitutionalIDExists, err)
			}
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case pgErr.Code == serializationFailureCode,
			pgErr.Code == deadlockDetectedCode,
			pgErr.Code == lockNotAvailableCode:
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		case pgErr.Code == checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case pgErr.Code == notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
				err,
			)
		case pgErr.Code == queryCanceledCode,
			pgErr.Code == adminShutdownCode,
			pgErr.Code == cannotConnectNowCode,
			pgErr.Code == tooManyConnectionsCode,
			strings.HasPrefix(pgErr.Code, connectionExceptionClass):
			return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
		}
		return err
	}

	if IsUnavailable(err) {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	// Return the original error for errors that don't have specific mappings
	return err
}

// IsUnavailable reports whether err means the database could not be reached
// or did not answer in time.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func isStoreError(err error) bool {
	for _, target := range []error{
		store.ErrNotFound,
		store.ErrDuplicate,
		store.ErrConflict,
		store.ErrUnavailable,
		store.ErrInvalidEntity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// checkRowsAffected returns store.ErrConflict unless exactly want rows changed.
func checkRowsAffected(result sql.Result, want int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n != want {
		return fmt.Errorf("%w: expected %d rows updated, got %d", store.ErrConflict, want, n)
	}
	return nil
}
