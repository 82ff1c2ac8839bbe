package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallyledger/tally/internal/apperrors"
	"github.com/tallyledger/tally/internal/core/domain"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	"github.com/tallyledger/tally/internal/models"
	"github.com/tallyledger/tally/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout},
	}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, balance, metadata, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.Balance,
		&m.Metadata,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountByID retrieves a specific account by its unique identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.NewAppError(500, "failed to find account by ID "+accountID, err)
	}
	return account, nil
}

// FindAccountByCode retrieves an account by its deterministic code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.NewAppError(500, "failed to find account by code "+code, err)
	}
	return account, nil
}

// CalculateBalance recomputes the authoritative balance of an account from
// its full entry history. Debits add, credits subtract.
func (r *PgxAccountRepository) CalculateBalance(ctx context.Context, accountID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'DEBIT' THEN amount ELSE -amount END), 0)
		FROM entries
		WHERE account_id = $1;
	`
	var balance int64
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return 0, apperrors.NewAppError(500, "failed to calculate balance for account "+accountID, err)
	}
	return balance, nil
}

// upsertAccountQuery is a single atomic get-or-create: the no-op DO UPDATE
// makes the conflicting row visible to RETURNING and, inside a transaction,
// acquires its row lock. There is no check-then-insert window.
const upsertAccountQuery = `
	INSERT INTO accounts (account_id, code, name, balance, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, 0, NULL, $4, $4)
	ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
	RETURNING ` + accountColumns + `;`

// FindOrCreateAccount atomically returns the existing account for code or
// inserts a new one with balance 0.
func (r *PgxAccountRepository) FindOrCreateAccount(ctx context.Context, code string, name string) (*domain.Account, error) {
	now := time.Now().UTC()
	account, err := scanAccount(r.Pool.QueryRow(ctx, upsertAccountQuery, uuid.NewString(), code, name, now))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find or create account "+code, err)
	}
	return account, nil
}

// GetOrCreateAccountForUpdate upserts the account row for code inside an open
// unit of work and holds its exclusive row lock until commit or abort. The
// returned balance reflects the previous lock holder's committed write.
func (r *PgxAccountRepository) GetOrCreateAccountForUpdate(ctx context.Context, tx pgx.Tx, code string, name string) (*domain.Account, error) {
	now := time.Now().UTC()
	account, err := scanAccount(tx.QueryRow(ctx, upsertAccountQuery, uuid.NewString(), code, name, now))
	if err != nil {
		return nil, translatePgError(err, "failed to lock account "+code)
	}
	return account, nil
}

// UpdateAccountBalanceInTx writes the new cached balance for a locked account.
func (r *PgxAccountRepository) UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance int64, now time.Time) error {
	query := `UPDATE accounts SET balance = $2, updated_at = $3 WHERE account_id = $1;`
	tag, err := tx.Exec(ctx, query, accountID, balance, now)
	if err != nil {
		return translatePgError(err, "failed to update balance of account "+accountID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetAccountBalance overwrites the cached balance outside the posting path.
// Used only by reconciliation.
func (r *PgxAccountRepository) SetAccountBalance(ctx context.Context, accountID string, balance int64, now time.Time) error {
	query := `UPDATE accounts SET balance = $2, updated_at = $3 WHERE account_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, accountID, balance, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to set balance of account "+accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account. The RESTRICT foreign key from entries
// refuses the delete while history references the account; that surfaces as
// ErrConflict.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, code string) error {
	query := `DELETE FROM accounts WHERE code = $1;`
	tag, err := r.Pool.Exec(ctx, query, code)
	if err != nil {
		return translatePgError(err, "failed to delete account "+code)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
