package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallyledger/tally/internal/apperrors"
)

// externalRefConstraint is the unique index backing the idempotency key. A
// 23505 on this constraint at commit means a racing posting won with the same
// (external_source, external_id) pair.
const externalRefConstraint = "transactions_external_ref_key"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
	// LockTimeout bounds how long a posting waits for a contended account
	// row lock before failing with ErrLockTimeout. Zero disables the bound.
	LockTimeout time.Duration
}

// Begin starts a new database transaction and applies the configured lock
// wait bound to it. SET LOCAL scopes the setting to this transaction only.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	if r.LockTimeout > 0 {
		timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, timeout); err != nil {
			_ = tx.Rollback(ctx)
			return nil, apperrors.NewAppError(500, "failed to set lock timeout", err)
		}
	}
	return tx, nil
}

// Commit commits a transaction, translating constraint violations into the
// application sentinels callers branch on.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return translatePgError(err, "failed to commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction. Rolling back after a successful commit
// is not an error.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// translatePgError maps SQLSTATE codes onto apperrors sentinels. Unknown
// errors are wrapped as internal failures.
func translatePgError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == externalRefConstraint {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateTransaction, pgErr.Detail)
			}
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, pgErr.Detail)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.Detail)
		case "55P03": // lock_not_available
			return apperrors.ErrLockTimeout
		}
	}
	return apperrors.NewAppError(500, msg, err)
}
