package domain

import "time"

// TransactionKind names the operation recipe that produced a transaction.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindSpend      TransactionKind = "spend"
	KindReserve    TransactionKind = "reserve"
	KindCapture    TransactionKind = "capture"
	KindRelease    TransactionKind = "release"
	KindAdjustment TransactionKind = "adjustment"
)

// Valid reports whether k is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindSpend, KindReserve, KindCapture, KindRelease, KindAdjustment:
		return true
	}
	return false
}

// Transaction is an immutable, balanced group of entries recorded as one
// atomic unit of work. No field is ever updated after insert.
type Transaction struct {
	TransactionID       string            `json:"transactionID"` // Primary Key (UUID)
	Kind                TransactionKind   `json:"kind"`
	Description         string            `json:"description"`
	Owner               *OwnerRef         `json:"owner,omitempty"`               // Optional opaque owner reference
	ParentTransactionID *string           `json:"parentTransactionID,omitempty"` // Non-owning back-reference for audit traversal
	ExternalSource      *string           `json:"externalSource,omitempty"`      // Both set or both absent
	ExternalID          *string           `json:"externalID,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`

	// Entries is populated on reads that request them; it is never partially
	// loaded.
	Entries []Entry `json:"entries,omitempty"`
}

// HasExternalRef reports whether the transaction carries an idempotency key.
func (t Transaction) HasExternalRef() bool {
	return t.ExternalSource != nil && t.ExternalID != nil
}
