package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rcssa/match-api/internal/platform/logger"
	"github.com/rcssa/match-api/internal/redact"
)

// TxFn is a function that executes within a database transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn in a transaction started with opts. The
// transaction commits when fn returns nil and rolls back when fn returns an
// error or panics; a panic is re-raised after the rollback.
//
// fn's error is returned unchanged unless the rollback itself fails, in which
// case both errors are joined. Commit failures wrap ErrTransactionFailed.
func RunInTransaction(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		log.Error("failed to begin transaction", redact.Attr(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil && err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("failed to roll back transaction", redact.Attr(rbErr))
			if p == nil {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
		if p != nil {
			log.Error("rolled back transaction after panic", "panic", p)
			// ALLOW-PANIC: re-raise after rollback
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error("failed to commit transaction", redact.Attr(err))
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	return nil
}
