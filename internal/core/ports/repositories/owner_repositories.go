package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tallyledger/tally/internal/core/domain"
)

// OwnerBalanceWriter mirrors wallet balances into the owner's cached balance
// row. The engine writes through inside the posting unit of work; the auditor
// writes directly when reconciling an owner.
type OwnerBalanceWriter interface {
	// UpsertOwnerBalanceInTx writes the mirrored balance inside an open unit of work.
	UpsertOwnerBalanceInTx(ctx context.Context, tx pgx.Tx, owner domain.OwnerRef, balance int64, now time.Time) error

	// UpsertOwnerBalance writes the mirrored balance outside any unit of work.
	UpsertOwnerBalance(ctx context.Context, owner domain.OwnerRef, balance int64, now time.Time) error
}

// OwnerRepositoryFacade combines the owner-balance interfaces.
type OwnerRepositoryFacade interface {
	OwnerBalanceWriter
}
