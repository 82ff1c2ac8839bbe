package domain

import "time"

// Account represents a named balance-bearing entity: a wallet, a reserved
// sub-account, a source, or a sink. Balance is a denormalized cache in base
// units; the authoritative value is always derivable from the entry history.
type Account struct {
	AccountID string            `json:"accountID"` // Primary Key (UUID)
	Code      string            `json:"code"`      // Unique string key, deterministically derived
	Name      string            `json:"name"`      // Display name; first writer wins
	Balance   int64             `json:"balance"`   // Signed, base units; cached
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
