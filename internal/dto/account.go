package dto

import (
	"time"

	"github.com/tallyledger/tally/internal/core/domain"
	"github.com/tallyledger/tally/internal/utils"
)

// CreateAccountRequest is the find-or-create request for an account.
type CreateAccountRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID      string            `json:"accountID"`
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Balance        int64             `json:"balance"`
	BalanceDisplay string            `json:"balanceDisplay"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// BalanceResponse reports both the cached and the recomputed balance of an account.
type BalanceResponse struct {
	Code              string `json:"code"`
	Balance           int64  `json:"balance"` // Cached
	BalanceDisplay    string `json:"balanceDisplay"`
	Calculated        int64  `json:"calculated"` // Authoritative, from entry history
	CalculatedDisplay string `json:"calculatedDisplay"`
}

// ToAccountResponse converts a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.AccountID,
		Code:           a.Code,
		Name:           a.Name,
		Balance:        a.Balance,
		BalanceDisplay: utils.FormatBaseUnits(a.Balance),
		Metadata:       a.Metadata,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
