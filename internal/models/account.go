package models

import "time"

// Account represents an account row in the ledger database.
type Account struct {
	AccountID string    `db:"account_id"`
	Code      string    `db:"code"` // Unique
	Name      string    `db:"name"`
	Balance   int64     `db:"balance"`  // Cached balance in base units
	Metadata  []byte    `db:"metadata"` // JSONB
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
