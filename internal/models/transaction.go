package models

import "time"

// Transaction represents a transaction row. Rows are insert-only; the
// repository layer exposes no update path for them.
type Transaction struct {
	TransactionID       string    `db:"transaction_id"`
	Kind                string    `db:"kind"`
	Description         string    `db:"description"`
	OwnerKind           *string   `db:"owner_kind"` // Both set or both NULL
	OwnerID             *string   `db:"owner_id"`
	ParentTransactionID *string   `db:"parent_transaction_id"`
	ExternalSource      *string   `db:"external_source"` // Both set or both NULL; unique pair
	ExternalID          *string   `db:"external_id"`
	Metadata            []byte    `db:"metadata"` // JSONB
	CreatedAt           time.Time `db:"created_at"`
}
