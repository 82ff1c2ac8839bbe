package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tallyledger/tally/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its deterministic code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// CalculateBalance recomputes the authoritative balance of an account as
	// sum(debit amounts) - sum(credit amounts) over its full entry history.
	CalculateBalance(ctx context.Context, accountID string) (int64, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// FindOrCreateAccount atomically returns the existing account for code or
	// inserts a new one with balance 0. This is a single upsert, never a
	// check-then-insert sequence. Name is ignored when the account exists.
	FindOrCreateAccount(ctx context.Context, code string, name string) (*domain.Account, error)

	// SetAccountBalance overwrites the cached balance directly, bypassing the
	// posting path. Used only by reconciliation.
	SetAccountBalance(ctx context.Context, accountID string, balance int64, now time.Time) error

	// DeleteAccount removes an account. The delete is refused with
	// ErrConflict while any entry references the account.
	DeleteAccount(ctx context.Context, code string) error
}

// AccountTransactionSupport defines the operations the posting engine uses
// inside an open unit of work.
type AccountTransactionSupport interface {
	// GetOrCreateAccountForUpdate upserts the account row for code and
	// acquires its exclusive row lock, held until the enclosing transaction
	// commits or aborts. The returned balance is the post-commit value of the
	// previous lock holder, never a stale read.
	GetOrCreateAccountForUpdate(ctx context.Context, tx pgx.Tx, code string, name string) (*domain.Account, error)

	// UpdateAccountBalanceInTx writes the new cached balance for a locked account.
	UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance int64, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
