package models

import "time"

// Entry represents an entry row. Insert-only, exclusively owned by its
// transaction; account_id is a restricted (non-cascading) foreign key.
type Entry struct {
	EntryID       string    `db:"entry_id"`
	TransactionID string    `db:"transaction_id"`
	AccountID     string    `db:"account_id"`
	Direction     string    `db:"direction"` // DEBIT or CREDIT
	Amount        int64     `db:"amount"`    // > 0, base units
	Metadata      []byte    `db:"metadata"`  // JSONB
	CreatedAt     time.Time `db:"created_at"`
}
