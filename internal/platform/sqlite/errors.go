package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/rcssa/match-api/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// MapError maps a SQLite error to the store error taxonomy.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range []error{
		store.ErrNotFound,
		store.ErrDuplicate,
		store.ErrConflict,
		store.ErrUnavailable,
		store.ErrInvalidEntity,
	} {
		if errors.Is(err, target) {
			return err
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch {
		case code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			message := strings.ToLower(err.Error())
			switch {
			case strings.Contains(message, "profiles.email"):
				return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
			case strings.Contains(message, "profiles.institutional_id"):
				return fmt.Errorf("%w: %v", store.ErrInstitutionalIDExists, err)
			}
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case code&0xff == sqlite3lib.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		case code&0xff == sqlite3lib.SQLITE_BUSY,
			code&0xff == sqlite3lib.SQLITE_LOCKED,
			code&0xff == sqlite3lib.SQLITE_CANTOPEN,
			code&0xff == sqlite3lib.SQLITE_IOERR:
			return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return err
}
