package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines the atomic unit of work every public ledger
// operation runs inside. Begin applies the configured lock-wait timeout to
// the new transaction; Commit translates storage constraint violations into
// apperrors sentinels (unique external reference -> ErrDuplicateTransaction).
type TransactionManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction. Rolling back an already-finished
	// transaction is not an error.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
