package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/tallyledger/tally/internal/core/domain"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/dto"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

// Ensure MockLedgerRepository implements portsrepo.LedgerRepositoryWithTx
var _ portsrepo.LedgerRepositoryWithTx = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockLedgerRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindTransactionByExternalRef(ctx context.Context, externalSource, externalID string) (*domain.Transaction, error) {
	args := m.Called(ctx, externalSource, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindTransactionChildren(ctx context.Context, parentTransactionID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, parentTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *MockLedgerRepository) ListEntriesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Entry), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) SumChildEntryAmounts(ctx context.Context, parentTransactionID, accountID string, direction domain.EntryDirection) (int64, error) {
	args := m.Called(ctx, parentTransactionID, accountID, direction)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) ListStaleReservations(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) InsertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.Entry) error {
	args := m.Called(ctx, tx, entries)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindTransactionByExternalRefInTx(ctx context.Context, tx pgx.Tx, externalSource, externalID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, externalSource, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

// Ensure MockAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CalculateBalance(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) FindOrCreateAccount(ctx context.Context, code string, name string) (*domain.Account, error) {
	args := m.Called(ctx, code, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SetAccountBalance(ctx context.Context, accountID string, balance int64, now time.Time) error {
	args := m.Called(ctx, accountID, balance, now)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockAccountRepository) GetOrCreateAccountForUpdate(ctx context.Context, tx pgx.Tx, code string, name string) (*domain.Account, error) {
	args := m.Called(ctx, tx, code, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance int64, now time.Time) error {
	args := m.Called(ctx, tx, accountID, balance, now)
	return args.Error(0)
}

// --- Mock OwnerRepository ---
type MockOwnerRepository struct {
	mock.Mock
}

// Ensure MockOwnerRepository implements portsrepo.OwnerRepositoryFacade
var _ portsrepo.OwnerRepositoryFacade = (*MockOwnerRepository)(nil)

func (m *MockOwnerRepository) UpsertOwnerBalanceInTx(ctx context.Context, tx pgx.Tx, owner domain.OwnerRef, balance int64, now time.Time) error {
	args := m.Called(ctx, tx, owner, balance, now)
	return args.Error(0)
}

func (m *MockOwnerRepository) UpsertOwnerBalance(ctx context.Context, owner domain.OwnerRef, balance int64, now time.Time) error {
	args := m.Called(ctx, owner, balance, now)
	return args.Error(0)
}

// --- Mock ReservationService (as used by the sweeper) ---
type MockReservationService struct {
	mock.Mock
}

var _ portssvc.ReservationSvcFacade = (*MockReservationService)(nil)

func (m *MockReservationService) Capture(ctx context.Context, reservationID string, req dto.ReservationActionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, reservationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockReservationService) Release(ctx context.Context, reservationID string, req dto.ReservationActionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, reservationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockReservationService) Complete(ctx context.Context, reservationID string, req dto.CompleteReservationRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, reservationID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
