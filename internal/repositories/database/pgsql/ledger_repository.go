package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallyledger/tally/internal/apperrors"
	"github.com/tallyledger/tally/internal/core/domain"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	"github.com/tallyledger/tally/internal/models"
	"github.com/tallyledger/tally/internal/utils/mapping"
	"github.com/tallyledger/tally/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for transaction and entry data.
func newPgxLedgerRepository(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout},
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryWithTx
var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

const transactionColumns = `transaction_id, kind, description, owner_kind, owner_id, parent_transaction_id, external_source, external_id, metadata, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Kind,
		&m.Description,
		&m.OwnerKind,
		&m.OwnerID,
		&m.ParentTransactionID,
		&m.ExternalSource,
		&m.ExternalID,
		&m.Metadata,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

func (r *PgxLedgerRepository) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

// FindTransactionByID retrieves a transaction header by its identifier.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	return txn, nil
}

// FindTransactionByExternalRef retrieves the transaction recorded under an
// idempotency key.
func (r *PgxLedgerRepository) FindTransactionByExternalRef(ctx context.Context, externalSource, externalID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_source = $1 AND external_id = $2;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, externalSource, externalID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by external ref "+externalSource+"/"+externalID, err)
	}
	return txn, nil
}

// FindTransactionByExternalRefInTx is the idempotency pre-check inside the
// posting unit of work. The unique index at commit remains the backstop for
// concurrent postings of the same key.
func (r *PgxLedgerRepository) FindTransactionByExternalRefInTx(ctx context.Context, tx pgx.Tx, externalSource, externalID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_source = $1 AND external_id = $2;`
	txn, err := scanTransaction(tx.QueryRow(ctx, query, externalSource, externalID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, translatePgError(err, "failed to check external ref "+externalSource+"/"+externalID)
	}
	return txn, nil
}

// FindTransactionChildren retrieves the transactions whose parent reference
// points at the given transaction, oldest first.
func (r *PgxLedgerRepository) FindTransactionChildren(ctx context.Context, parentTransactionID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE parent_transaction_id = $1 ORDER BY created_at, transaction_id;`
	txns, err := r.queryTransactions(ctx, query, parentTransactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find children of transaction "+parentTransactionID, err)
	}
	return txns, nil
}

// FindEntriesByTransactionID retrieves all entries of a transaction in
// insertion order.
func (r *PgxLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error) {
	query := `
		SELECT entry_id, transaction_id, account_id, direction, amount, metadata, created_at
		FROM entries
		WHERE transaction_id = $1
		ORDER BY created_at, entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for transaction "+transactionID, err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		err := rows.Scan(&e.EntryID, &e.TransactionID, &e.AccountID, &e.Direction, &e.Amount, &e.Metadata, &e.CreatedAt)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for transaction "+transactionID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for transaction "+transactionID, err)
	}
	return mapping.ToDomainEntrySlice(entries), nil
}

// ListEntriesByAccountID retrieves a paginated list of entries for an account
// using token-based pagination, newest first.
func (r *PgxLedgerRepository) ListEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT entry_id, transaction_id, account_id, direction, amount, metadata, created_at
		FROM entries
		WHERE account_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, entry_id DESC`

	args := []interface{}{accountID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastEntryID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (created_at, entry_id) < ($2, $3) `
		args = append(args, lastCreatedAt, lastEntryID)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list entries for account "+accountID, err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		err := rows.Scan(&e.EntryID, &e.TransactionID, &e.AccountID, &e.Direction, &e.Amount, &e.Metadata, &e.CreatedAt)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for account "+accountID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for account "+accountID, err)
	}

	var newNextToken *string
	if len(entries) == fetchLimit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		newNextToken = &token
	}
	return mapping.ToDomainEntrySlice(entries), newNextToken, nil
}

// SumChildEntryAmounts sums the amounts of the given direction posted by
// children of the parent against one account. The reservation coordinator
// derives the remaining reserved amount from this.
func (r *PgxLedgerRepository) SumChildEntryAmounts(ctx context.Context, parentTransactionID, accountID string, direction domain.EntryDirection) (int64, error) {
	query := `
		SELECT COALESCE(SUM(e.amount), 0)
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE t.parent_transaction_id = $1 AND e.account_id = $2 AND e.direction = $3;
	`
	var sum int64
	if err := r.Pool.QueryRow(ctx, query, parentTransactionID, accountID, string(direction)).Scan(&sum); err != nil {
		return 0, apperrors.NewAppError(500, "failed to sum child entries of transaction "+parentTransactionID, err)
	}
	return sum, nil
}

// ListStaleReservations finds reserve transactions created before the cutoff
// whose reserved amount has not been fully captured or released.
func (r *PgxLedgerRepository) ListStaleReservations(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + qualifiedTransactionColumns("t") + `
		FROM transactions t
		JOIN entries r ON r.transaction_id = t.transaction_id AND r.direction = 'DEBIT'
		WHERE t.kind = 'reserve'
		  AND t.created_at < $1
		  AND r.amount > COALESCE((
			SELECT SUM(c.amount)
			FROM entries c
			JOIN transactions child ON child.transaction_id = c.transaction_id
			WHERE child.parent_transaction_id = t.transaction_id
			  AND c.account_id = r.account_id
			  AND c.direction = 'CREDIT'), 0)
		ORDER BY t.created_at
		LIMIT $2;
	`
	txns, err := r.queryTransactions(ctx, query, cutoff, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list stale reservations", err)
	}
	return txns, nil
}

// InsertTransactionInTx inserts the transaction row inside an open unit of work.
func (r *PgxLedgerRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.Kind,
		m.Description,
		m.OwnerKind,
		m.OwnerID,
		m.ParentTransactionID,
		m.ExternalSource,
		m.ExternalID,
		m.Metadata,
		m.CreatedAt,
	)
	if err != nil {
		return translatePgError(err, "failed to insert transaction "+m.TransactionID)
	}
	return nil
}

// InsertEntriesInTx inserts the entry rows inside an open unit of work as one batch.
func (r *PgxLedgerRepository) InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.Entry) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO entries (entry_id, transaction_id, account_id, direction, amount, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, entry := range entries {
		m := mapping.ToModelEntry(entry)
		batch.Queue(query, m.EntryID, m.TransactionID, m.AccountID, m.Direction, m.Amount, m.Metadata, m.CreatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return translatePgError(err, "failed to execute entry insert batch")
	}
	return nil
}

// DeleteTransaction removes a transaction. The RESTRICT references from
// entries and child transactions refuse the delete while history exists.
func (r *PgxLedgerRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	query := `DELETE FROM transactions WHERE transaction_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, transactionID)
	if err != nil {
		return translatePgError(err, "failed to delete transaction "+transactionID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// qualifiedTransactionColumns prefixes the transaction column list for joins.
func qualifiedTransactionColumns(alias string) string {
	return alias + ".transaction_id, " + alias + ".kind, " + alias + ".description, " +
		alias + ".owner_kind, " + alias + ".owner_id, " + alias + ".parent_transaction_id, " +
		alias + ".external_source, " + alias + ".external_id, " + alias + ".metadata, " + alias + ".created_at"
}
