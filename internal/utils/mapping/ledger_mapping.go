package mapping

import (
	"encoding/json"

	"github.com/tallyledger/tally/internal/core/domain"
	"github.com/tallyledger/tally/internal/models"
)

// MarshalMetadata encodes a metadata map for the JSONB column. Nil maps are
// stored as NULL.
func MarshalMetadata(md map[string]string) []byte {
	if len(md) == 0 {
		return nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		// map[string]string cannot fail to marshal
		return nil
	}
	return b
}

// UnmarshalMetadata decodes the JSONB column back into a metadata map.
func UnmarshalMetadata(b []byte) map[string]string {
	if len(b) == 0 {
		return nil
	}
	var md map[string]string
	if err := json.Unmarshal(b, &md); err != nil {
		return nil
	}
	return md
}

// ToModelTransaction converts a domain transaction to its database model.
func ToModelTransaction(t domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID:       t.TransactionID,
		Kind:                string(t.Kind),
		Description:         t.Description,
		ParentTransactionID: t.ParentTransactionID,
		ExternalSource:      t.ExternalSource,
		ExternalID:          t.ExternalID,
		Metadata:            MarshalMetadata(t.Metadata),
		CreatedAt:           t.CreatedAt,
	}
	if t.Owner != nil {
		kind := t.Owner.Kind
		id := t.Owner.ID
		m.OwnerKind = &kind
		m.OwnerID = &id
	}
	return m
}

// ToDomainTransaction converts a database model to a domain transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	t := domain.Transaction{
		TransactionID:       m.TransactionID,
		Kind:                domain.TransactionKind(m.Kind),
		Description:         m.Description,
		ParentTransactionID: m.ParentTransactionID,
		ExternalSource:      m.ExternalSource,
		ExternalID:          m.ExternalID,
		Metadata:            UnmarshalMetadata(m.Metadata),
		CreatedAt:           m.CreatedAt,
	}
	if m.OwnerKind != nil && m.OwnerID != nil {
		t.Owner = &domain.OwnerRef{Kind: *m.OwnerKind, ID: *m.OwnerID}
	}
	return t
}

// ToModelEntry converts a domain entry to its database model.
func ToModelEntry(e domain.Entry) models.Entry {
	return models.Entry{
		EntryID:       e.EntryID,
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		Direction:     string(e.Direction),
		Amount:        e.Amount,
		Metadata:      MarshalMetadata(e.Metadata),
		CreatedAt:     e.CreatedAt,
	}
}

// ToDomainEntry converts a database model to a domain entry.
func ToDomainEntry(m models.Entry) domain.Entry {
	return domain.Entry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Direction:     domain.EntryDirection(m.Direction),
		Amount:        m.Amount,
		Metadata:      UnmarshalMetadata(m.Metadata),
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainEntrySlice converts a slice of entry models.
func ToDomainEntrySlice(ms []models.Entry) []domain.Entry {
	ds := make([]domain.Entry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntry(m)
	}
	return ds
}

// ToDomainAccount converts a database model to a domain account.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID: m.AccountID,
		Code:      m.Code,
		Name:      m.Name,
		Balance:   m.Balance,
		Metadata:  UnmarshalMetadata(m.Metadata),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
