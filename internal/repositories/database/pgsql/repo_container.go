package pgsql

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool, lockTimeout)
	ledgerRepo := newPgxLedgerRepository(dbPool, lockTimeout)
	ownerRepo := newPgxOwnerBalanceRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		LedgerRepo:  ledgerRepo,
		OwnerRepo:   ownerRepo,
	}
}
