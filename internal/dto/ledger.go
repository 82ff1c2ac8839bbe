package dto

import (
	"time"

	"github.com/tallyledger/tally/internal/core/domain"
	"github.com/tallyledger/tally/internal/utils"
)

// LedgerOperationRequest is the request body shared by the deposit, spend and
// reserve endpoints. Source and ExternalID form the idempotency key and must
// be given together or not at all.
type LedgerOperationRequest struct {
	Amount      int64             `json:"amount" binding:"required,gt=0"`
	Description string            `json:"description"`
	Source      string            `json:"source"`     // External source tag, also picks the source/sink account
	ExternalID  string            `json:"externalID"` // Idempotency id within Source
	Metadata    map[string]string `json:"metadata"`
}

// AdjustEntryRequest is one caller-supplied leg of an adjustment.
type AdjustEntryRequest struct {
	AccountCode string `json:"accountCode" binding:"required"`
	AccountName string `json:"accountName"`
	Direction   string `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
}

// AdjustRequest is the escape-hatch posting request: arbitrary balanced
// entries, no overdraft enforcement.
type AdjustRequest struct {
	Description string               `json:"description" binding:"required"`
	Entries     []AdjustEntryRequest `json:"entries" binding:"required,min=1,dive"`
	Source      string               `json:"source"`
	ExternalID  string               `json:"externalID"`
	Metadata    map[string]string    `json:"metadata"`
}

// EntryResponse is the API representation of one ledger entry.
type EntryResponse struct {
	EntryID       string            `json:"entryID"`
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	Direction     string            `json:"direction"`
	Amount        int64             `json:"amount"`
	AmountDisplay string            `json:"amountDisplay"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// TransactionResponse is the API representation of a transaction, optionally
// including its entries.
type TransactionResponse struct {
	TransactionID       string            `json:"transactionID"`
	Kind                string            `json:"kind"`
	Description         string            `json:"description"`
	Owner               *domain.OwnerRef  `json:"owner,omitempty"`
	ParentTransactionID *string           `json:"parentTransactionID,omitempty"`
	ExternalSource      *string           `json:"externalSource,omitempty"`
	ExternalID          *string           `json:"externalID,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	Entries             []EntryResponse   `json:"entries,omitempty"`
}

// ListEntriesResponse is a paginated page of account entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain entry to its API representation.
func ToEntryResponse(e domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:       e.EntryID,
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		Direction:     string(e.Direction),
		Amount:        e.Amount,
		AmountDisplay: utils.FormatBaseUnits(e.Amount),
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries.
func ToEntryResponses(entries []domain.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToEntryResponse(e)
	}
	return out
}

// ToTransactionResponse converts a domain transaction to its API representation.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:       t.TransactionID,
		Kind:                string(t.Kind),
		Description:         t.Description,
		Owner:               t.Owner,
		ParentTransactionID: t.ParentTransactionID,
		ExternalSource:      t.ExternalSource,
		ExternalID:          t.ExternalID,
		Metadata:            t.Metadata,
		CreatedAt:           t.CreatedAt,
	}
	if len(t.Entries) > 0 {
		resp.Entries = ToEntryResponses(t.Entries)
	}
	return resp
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}
