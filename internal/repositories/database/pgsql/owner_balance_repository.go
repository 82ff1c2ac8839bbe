package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallyledger/tally/internal/core/domain"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
)

type PgxOwnerBalanceRepository struct {
	BaseRepository
}

// newPgxOwnerBalanceRepository creates a new repository for mirrored owner balances.
func newPgxOwnerBalanceRepository(pool *pgxpool.Pool) portsrepo.OwnerRepositoryFacade {
	return &PgxOwnerBalanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxOwnerBalanceRepository implements portsrepo.OwnerRepositoryFacade
var _ portsrepo.OwnerRepositoryFacade = (*PgxOwnerBalanceRepository)(nil)

const upsertOwnerBalanceQuery = `
	INSERT INTO owner_balances (owner_kind, owner_id, balance, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (owner_kind, owner_id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at;
`

// UpsertOwnerBalanceInTx writes the mirrored wallet balance inside the
// posting unit of work, keeping the mirror transactional with the ledger.
func (r *PgxOwnerBalanceRepository) UpsertOwnerBalanceInTx(ctx context.Context, tx pgx.Tx, owner domain.OwnerRef, balance int64, now time.Time) error {
	if _, err := tx.Exec(ctx, upsertOwnerBalanceQuery, owner.Kind, owner.ID, balance, now); err != nil {
		return translatePgError(err, "failed to upsert balance of owner "+owner.Kind+"/"+owner.ID)
	}
	return nil
}

// UpsertOwnerBalance writes the mirrored wallet balance outside any unit of
// work. Used by reconciliation.
func (r *PgxOwnerBalanceRepository) UpsertOwnerBalance(ctx context.Context, owner domain.OwnerRef, balance int64, now time.Time) error {
	if _, err := r.Pool.Exec(ctx, upsertOwnerBalanceQuery, owner.Kind, owner.ID, balance, now); err != nil {
		return translatePgError(err, "failed to upsert balance of owner "+owner.Kind+"/"+owner.ID)
	}
	return nil
}
