package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tallyledger/tally/internal/core/domain"
)

// TransactionReader defines read operations for transaction and entry data.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction header by its identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByExternalRef retrieves the transaction recorded under an
	// idempotency key, or ErrNotFound.
	FindTransactionByExternalRef(ctx context.Context, externalSource, externalID string) (*domain.Transaction, error)

	// FindTransactionChildren retrieves the transactions whose
	// parent_transaction_id references the given transaction, oldest first.
	FindTransactionChildren(ctx context.Context, parentTransactionID string) ([]domain.Transaction, error)

	// FindEntriesByTransactionID retrieves all entries of a transaction in
	// insertion order.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error)

	// ListEntriesByAccountID retrieves a paginated list of entries for an
	// account using token-based pagination, newest first.
	ListEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error)

	// SumChildEntryAmounts sums the amounts of the given direction posted by
	// child transactions of the given parent against the given account. The
	// reservation coordinator uses it to compute the remaining reserved amount.
	SumChildEntryAmounts(ctx context.Context, parentTransactionID, accountID string, direction domain.EntryDirection) (int64, error)

	// ListStaleReservations finds reserve transactions created before the
	// cutoff whose reserved amount has not been fully captured or released.
	ListStaleReservations(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error)
}

// TransactionWriter defines the insert-only write operations of the posting
// engine. There is deliberately no update method: transactions and entries
// are immutable once committed.
type TransactionWriter interface {
	// InsertTransactionInTx inserts the transaction row inside an open unit of work.
	InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// InsertEntriesInTx inserts the entry rows inside an open unit of work.
	InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.Entry) error

	// FindTransactionByExternalRefInTx is the idempotency pre-check, executed
	// inside the posting unit of work. The authoritative backstop is the
	// storage uniqueness constraint checked at commit.
	FindTransactionByExternalRefInTx(ctx context.Context, tx pgx.Tx, externalSource, externalID string) (*domain.Transaction, error)

	// DeleteTransaction removes a transaction. Refused with ErrConflict while
	// entries or child transactions reference it.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// LedgerRepositoryFacade combines all transaction-related repository interfaces.
type LedgerRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
