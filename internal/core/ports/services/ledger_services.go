package services

import (
	"context"

	"github.com/tallyledger/tally/internal/core/domain"
	"github.com/tallyledger/tally/internal/dto"
)

// LedgerSvcFacade is the posting engine surface: the named operation recipes
// plus the raw Record entry point they all delegate to.
type LedgerSvcFacade interface {
	// Record validates, locks, posts and commits a balanced entry set as one
	// atomic unit of work. All other write operations delegate here.
	Record(ctx context.Context, input domain.RecordInput) (*domain.Transaction, error)

	// Deposit credits a source account and debits the owner's wallet.
	Deposit(ctx context.Context, owner domain.OwnerRef, req dto.LedgerOperationRequest) (*domain.Transaction, error)

	// Spend moves funds from the owner's wallet into a sink; the wallet leg
	// must not go negative.
	Spend(ctx context.Context, owner domain.OwnerRef, req dto.LedgerOperationRequest) (*domain.Transaction, error)

	// Reserve moves funds from the owner's wallet into its reserved
	// sub-account pending capture or release.
	Reserve(ctx context.Context, owner domain.OwnerRef, req dto.LedgerOperationRequest) (*domain.Transaction, error)

	// Adjust posts caller-supplied balanced entries with no overdraft enforcement.
	Adjust(ctx context.Context, req dto.AdjustRequest) (*domain.Transaction, error)

	// ReverseTransaction posts an adjustment with the direction-swapped
	// entries of a prior transaction, restoring affected balances exactly.
	ReverseTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// GetTransaction retrieves a transaction and its entries.
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// GetTransactionByExternalRef retrieves the transaction recorded under an
	// idempotency key, with its entries.
	GetTransactionByExternalRef(ctx context.Context, externalSource, externalID string) (*domain.Transaction, error)

	// GetTransactionChildren retrieves the child transactions linked via
	// parent_transaction_id.
	GetTransactionChildren(ctx context.Context, transactionID string) ([]domain.Transaction, error)

	// ListAccountEntries pages through the entry history of an account.
	ListAccountEntries(ctx context.Context, code string, limit int, nextToken *string) ([]domain.Entry, *string, error)

	// DeleteTransaction removes a transaction; refused while entries or
	// children reference it.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// ReservationSvcFacade manages the reserve -> capture/release lifecycle.
type ReservationSvcFacade interface {
	// Capture consumes part or all of a reservation into a sink account.
	Capture(ctx context.Context, reservationID string, req dto.ReservationActionRequest) (*domain.Transaction, error)

	// Release returns part or all of a reservation to the owner's wallet.
	Release(ctx context.Context, reservationID string, req dto.ReservationActionRequest) (*domain.Transaction, error)

	// Complete dispatches the reported saga outcome to Capture or Release.
	Complete(ctx context.Context, reservationID string, req dto.CompleteReservationRequest) (*domain.Transaction, error)
}

// AuditSvcFacade recomputes authoritative balances and repairs caches.
type AuditSvcFacade interface {
	// CalculateBalance returns the authoritative balance from entry history.
	CalculateBalance(ctx context.Context, code string) (int64, error)

	// ReconcileAccount overwrites a drifted cached balance with the
	// calculated value and returns the calculated value.
	ReconcileAccount(ctx context.Context, code string) (int64, error)

	// ReconcileOwner reconciles the owner's wallet account and mirrors the
	// result into the owner's cached balance.
	ReconcileOwner(ctx context.Context, owner domain.OwnerRef) (int64, error)
}

// AccountSvcFacade exposes direct account access.
type AccountSvcFacade interface {
	// FindOrCreateAccount atomically returns or creates the account for a code.
	FindOrCreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its deterministic code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// DeleteAccount removes an account; refused while entries reference it.
	DeleteAccount(ctx context.Context, code string) error
}

// SweeperSvcFacade force-releases reservations left open past a deadline.
// This is an operator tool around the engine, not part of it.
type SweeperSvcFacade interface {
	// SweepStaleReservations releases every reservation older than the
	// configured deadline that still has a remaining reserved amount.
	// It returns the number of reservations released.
	SweepStaleReservations(ctx context.Context) (int, error)
}
