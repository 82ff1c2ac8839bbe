package domain

import "time"

// EntryDirection indicates whether an entry debits or credits its account.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// Opposite returns the swapped direction, used when reversing a transaction.
func (d EntryDirection) Opposite() EntryDirection {
	if d == Debit {
		return Credit
	}
	return Debit
}

// Delta returns the signed balance effect of an amount moved in direction d.
func (d EntryDirection) Delta(amount int64) int64 {
	if d == Credit {
		return -amount
	}
	return amount
}

// Entry is one immutable movement of a positive amount against one account,
// always part of a balanced transaction. Entries are exclusively owned by
// their transaction; the account is a non-owning reference.
type Entry struct {
	EntryID       string            `json:"entryID"` // Primary Key (UUID)
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	Direction     EntryDirection    `json:"direction"`
	Amount        int64             `json:"amount"` // Strictly positive, base units
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// EntryInput describes one leg of a posting request before accounts are
// resolved. Accounts are referenced by code because they may not exist yet;
// the engine creates them lazily. The order of inputs is the order in which
// account locks are acquired.
type EntryInput struct {
	AccountCode string
	AccountName string // Used only if the account is created by this posting
	Direction   EntryDirection
	Amount      int64
	// EnforceNonNegative aborts the whole posting with ErrInsufficientFunds
	// if applying this entry would drive the account balance below zero.
	EnforceNonNegative bool
	Metadata           map[string]string
}

// BalancedEntries reports whether the inputs form a valid balanced set:
// non-empty, all amounts strictly positive, and debit sum equal to credit sum.
func BalancedEntries(inputs []EntryInput) bool {
	if len(inputs) == 0 {
		return false
	}
	var debits, credits int64
	for _, in := range inputs {
		if in.Amount <= 0 {
			return false
		}
		if in.Direction == Debit {
			debits += in.Amount
		} else {
			credits += in.Amount
		}
	}
	return debits == credits
}
