package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/tallyledger/tally/internal/apperrors"
	"github.com/tallyledger/tally/internal/core/domain"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/core/services"
	"github.com/tallyledger/tally/internal/dto"
)

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountRepo *MockAccountRepository
	mockOwnerRepo   *MockOwnerRepository
	service         portssvc.LedgerSvcFacade
	owner           domain.OwnerRef
	walletAccount   domain.Account
	sourceAccount   domain.Account
	sinkAccount     domain.Account
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockOwnerRepo = new(MockOwnerRepository)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockAccountRepo, suite.mockOwnerRepo, nil)

	suite.owner = domain.OwnerRef{Kind: "user", ID: uuid.NewString()}
	suite.walletAccount = domain.Account{
		AccountID: uuid.NewString(),
		Code:      suite.owner.WalletCode(),
		Name:      suite.owner.WalletName(),
		Balance:   100,
	}
	suite.sourceAccount = domain.Account{
		AccountID: uuid.NewString(),
		Code:      domain.SourceCode("bank"),
		Name:      domain.SourceName("bank"),
		Balance:   0,
	}
	suite.sinkAccount = domain.Account{
		AccountID: uuid.NewString(),
		Code:      domain.SinkCode("shop"),
		Name:      domain.SinkName("shop"),
		Balance:   0,
	}
}

// expectUnitOfWork wires the begin/rollback pair every posting runs inside.
// Rollback after commit is a no-op in the real repository.
func (suite *LedgerServiceTestSuite) expectUnitOfWork() {
	suite.mockLedgerRepo.On("Begin", mock.Anything).Return(nil, nil).Once()
	suite.mockLedgerRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Once()
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	suite.expectUnitOfWork()

	wallet := suite.walletAccount
	source := suite.sourceAccount
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&wallet, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, wallet.AccountID, int64(140), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, source.Code, source.Name).Return(&source, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, source.AccountID, int64(-40), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertEntriesInTx", ctx, mock.Anything, mock.AnythingOfType("[]domain.Entry")).Return(nil).Once()
	suite.mockOwnerRepo.On("UpsertOwnerBalanceInTx", ctx, mock.Anything, suite.owner, int64(140), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	txn, err := suite.service.Deposit(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 40, Source: "bank"})

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.KindDeposit, txn.Kind)
	suite.NotEmpty(txn.TransactionID)
	suite.Require().Len(txn.Entries, 2)
	suite.Equal(domain.Debit, txn.Entries[0].Direction)
	suite.Equal(wallet.AccountID, txn.Entries[0].AccountID)
	suite.Equal(domain.Credit, txn.Entries[1].Direction)
	suite.Equal(source.AccountID, txn.Entries[1].AccountID)

	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOwnerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSpend_InsufficientFunds() {
	ctx := context.Background()
	suite.expectUnitOfWork()

	wallet := suite.walletAccount // balance 100
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&wallet, nil).Once()

	_, err := suite.service.Spend(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 250, Source: "shop"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "InsertEntriesInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSpend_ExactBalanceSucceeds() {
	ctx := context.Background()
	suite.expectUnitOfWork()

	wallet := suite.walletAccount
	sink := suite.sinkAccount
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&wallet, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, wallet.AccountID, int64(0), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, sink.Code, sink.Name).Return(&sink, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, sink.AccountID, int64(100), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertEntriesInTx", ctx, mock.Anything, mock.AnythingOfType("[]domain.Entry")).Return(nil).Once()
	suite.mockOwnerRepo.On("UpsertOwnerBalanceInTx", ctx, mock.Anything, suite.owner, int64(0), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	txn, err := suite.service.Spend(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 100, Source: "shop"})

	suite.Require().NoError(err)
	suite.Equal(domain.KindSpend, txn.Kind)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOwnerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestSpend_SecondSpenderSeesCommittedBalance() {
	ctx := context.Background()
	suite.expectUnitOfWork()
	suite.expectUnitOfWork()

	// Two spenders contend for a wallet holding 100. The row lock serializes
	// them: the second locks the wallet only after the first has committed,
	// so its read observes the drained balance of 40.
	wallet := suite.walletAccount // balance 100
	sink := suite.sinkAccount
	drained := suite.walletAccount
	drained.Balance = 40

	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil).Twice()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&wallet, nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&drained, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, wallet.AccountID, int64(40), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, sink.Code, sink.Name).Return(&sink, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, sink.AccountID, int64(60), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertEntriesInTx", ctx, mock.Anything, mock.AnythingOfType("[]domain.Entry")).Return(nil).Once()
	suite.mockOwnerRepo.On("UpsertOwnerBalanceInTx", ctx, mock.Anything, suite.owner, int64(40), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	first, err := suite.service.Spend(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 60, Source: "shop"})
	suite.Require().NoError(err)
	suite.Equal(domain.KindSpend, first.Kind)

	_, err = suite.service.Spend(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 60, Source: "shop"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	// Exactly one spend commits, and the wallet's last written balance is 40.
	suite.mockLedgerRepo.AssertNumberOfCalls(suite.T(), "Commit", 1)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOwnerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecord_ImbalancedEntries() {
	ctx := context.Background()

	_, err := suite.service.Record(ctx, domain.RecordInput{
		Kind: domain.KindAdjustment,
		Entries: []domain.EntryInput{
			{AccountCode: "a", AccountName: "a", Direction: domain.Debit, Amount: 100},
			{AccountCode: "b", AccountName: "b", Direction: domain.Credit, Amount: 60},
		},
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrImbalancedTransaction)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecord_EmptyEntries() {
	ctx := context.Background()

	_, err := suite.service.Record(ctx, domain.RecordInput{Kind: domain.KindAdjustment})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrImbalancedTransaction)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecord_HalfExternalRef() {
	ctx := context.Background()
	src := "bank"

	_, err := suite.service.Record(ctx, domain.RecordInput{
		Kind:           domain.KindDeposit,
		ExternalSource: &src,
		Entries: []domain.EntryInput{
			{AccountCode: "a", AccountName: "a", Direction: domain.Debit, Amount: 10},
			{AccountCode: "b", AccountName: "b", Direction: domain.Credit, Amount: 10},
		},
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeposit_DuplicateExternalRef() {
	ctx := context.Background()
	suite.expectUnitOfWork()

	existing := &domain.Transaction{TransactionID: uuid.NewString()}
	suite.mockLedgerRepo.On("FindTransactionByExternalRefInTx", ctx, mock.Anything, "bank", "evt-1").Return(existing, nil).Once()

	_, err := suite.service.Deposit(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 40, Source: "bank", ExternalID: "evt-1"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicateTransaction)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "InsertTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeposit_CommitRaceSurfacesDuplicate() {
	ctx := context.Background()
	suite.expectUnitOfWork()

	wallet := suite.walletAccount
	source := suite.sourceAccount
	suite.mockLedgerRepo.On("FindTransactionByExternalRefInTx", ctx, mock.Anything, "bank", "evt-2").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&wallet, nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, source.Code, source.Name).Return(&source, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
	suite.mockLedgerRepo.On("InsertEntriesInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockOwnerRepo.On("UpsertOwnerBalanceInTx", ctx, mock.Anything, suite.owner, mock.Anything, mock.Anything).Return(nil).Once()
	// A racing insert of the same external reference wins at commit time.
	suite.mockLedgerRepo.On("Commit", ctx, mock.Anything).Return(apperrors.ErrDuplicateTransaction).Once()

	_, err := suite.service.Deposit(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 40, Source: "bank", ExternalID: "evt-2"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicateTransaction)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReserve_MirrorsWalletNotReserved() {
	ctx := context.Background()
	suite.expectUnitOfWork()

	wallet := suite.walletAccount // balance 100
	reserved := domain.Account{
		AccountID: uuid.NewString(),
		Code:      suite.owner.ReservedCode(),
		Name:      suite.owner.ReservedName(),
		Balance:   0,
	}
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&wallet, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, wallet.AccountID, int64(70), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, reserved.Code, reserved.Name).Return(&reserved, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, reserved.AccountID, int64(30), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertEntriesInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	// The mirrored owner balance is the spendable wallet, not the reserved pot.
	suite.mockOwnerRepo.On("UpsertOwnerBalanceInTx", ctx, mock.Anything, suite.owner, int64(70), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	txn, err := suite.service.Reserve(ctx, suite.owner, dto.LedgerOperationRequest{Amount: 30})

	suite.Require().NoError(err)
	suite.Equal(domain.KindReserve, txn.Kind)
	suite.mockOwnerRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestAdjust_AllowsNegativeBalance() {
	ctx := context.Background()
	suite.expectUnitOfWork()

	poor := domain.Account{AccountID: uuid.NewString(), Code: "fees", Name: "fees", Balance: 10}
	other := domain.Account{AccountID: uuid.NewString(), Code: "rebates", Name: "rebates", Balance: 0}
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, "fees", "fees").Return(&poor, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, poor.AccountID, int64(-90), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, "rebates", "rebates").Return(&other, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, other.AccountID, int64(100), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertEntriesInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockLedgerRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	txn, err := suite.service.Adjust(ctx, dto.AdjustRequest{
		Description: "manual correction",
		Entries: []dto.AdjustEntryRequest{
			{AccountCode: "fees", Direction: "CREDIT", Amount: 100},
			{AccountCode: "rebates", Direction: "DEBIT", Amount: 100},
		},
	})

	suite.Require().NoError(err)
	suite.Equal(domain.KindAdjustment, txn.Kind)
	suite.mockOwnerRepo.AssertNotCalled(suite.T(), "UpsertOwnerBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReverseTransaction_SwapsDirections() {
	ctx := context.Background()

	originalID := uuid.NewString()
	wallet := suite.walletAccount
	sink := suite.sinkAccount
	original := &domain.Transaction{
		TransactionID: originalID,
		Kind:          domain.KindSpend,
		Description:   "coffee",
		Owner:         &suite.owner,
	}
	entries := []domain.Entry{
		{EntryID: uuid.NewString(), TransactionID: originalID, AccountID: wallet.AccountID, Direction: domain.Credit, Amount: 25},
		{EntryID: uuid.NewString(), TransactionID: originalID, AccountID: sink.AccountID, Direction: domain.Debit, Amount: 25},
	}
	suite.mockLedgerRepo.On("FindTransactionByID", ctx, originalID).Return(original, nil).Once()
	suite.mockLedgerRepo.On("FindEntriesByTransactionID", ctx, originalID).Return(entries, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, wallet.AccountID).Return(&wallet, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, sink.AccountID).Return(&sink, nil).Once()

	suite.expectUnitOfWork()
	var inserted domain.Transaction
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) { inserted = args.Get(2).(domain.Transaction) }).Return(nil).Once()
	// Wallet gets the 25 back, sink gives it up.
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, wallet.Code, wallet.Name).Return(&wallet, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, wallet.AccountID, int64(125), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("GetOrCreateAccountForUpdate", ctx, mock.Anything, sink.Code, sink.Name).Return(&sink, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalanceInTx", ctx, mock.Anything, sink.AccountID, int64(-25), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertEntriesInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockOwnerRepo.On("UpsertOwnerBalanceInTx", ctx, mock.Anything, suite.owner, int64(125), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockLedgerRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	reversal, err := suite.service.ReverseTransaction(ctx, originalID)

	suite.Require().NoError(err)
	suite.Equal(domain.KindAdjustment, reversal.Kind)
	suite.Require().NotNil(inserted.ParentTransactionID)
	suite.Equal(originalID, *inserted.ParentTransactionID)
	suite.Require().Len(reversal.Entries, 2)
	suite.Equal(domain.Debit, reversal.Entries[0].Direction)
	suite.Equal(domain.Credit, reversal.Entries[1].Direction)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetTransaction_NotFound() {
	ctx := context.Background()
	unknownID := uuid.NewString()
	suite.mockLedgerRepo.On("FindTransactionByID", ctx, unknownID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetTransaction(ctx, unknownID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestGetTransactionByExternalRef_LoadsEntries() {
	ctx := context.Background()
	txnID := uuid.NewString()
	recorded := &domain.Transaction{TransactionID: txnID, Kind: domain.KindDeposit}
	entries := []domain.Entry{
		{EntryID: uuid.NewString(), TransactionID: txnID, Direction: domain.Debit, Amount: 40},
		{EntryID: uuid.NewString(), TransactionID: txnID, Direction: domain.Credit, Amount: 40},
	}
	suite.mockLedgerRepo.On("FindTransactionByExternalRef", ctx, "bank", "evt-7").Return(recorded, nil).Once()
	suite.mockLedgerRepo.On("FindEntriesByTransactionID", ctx, txnID).Return(entries, nil).Once()

	txn, err := suite.service.GetTransactionByExternalRef(ctx, "bank", "evt-7")

	suite.Require().NoError(err)
	suite.Equal(txnID, txn.TransactionID)
	suite.Len(txn.Entries, 2)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestGetTransactionByExternalRef_NotFound() {
	ctx := context.Background()
	suite.mockLedgerRepo.On("FindTransactionByExternalRef", ctx, "bank", "evt-8").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetTransactionByExternalRef(ctx, "bank", "evt-8")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "FindEntriesByTransactionID", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListAccountEntries_UnknownAccount() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByCode", ctx, "nope").Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.ListAccountEntries(ctx, "nope", 10, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ListEntriesByAccountID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecord_BeginFailure() {
	ctx := context.Background()
	beginErr := assert.AnError
	suite.mockLedgerRepo.On("Begin", mock.Anything).Return(nil, beginErr).Once()
	suite.mockLedgerRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()

	_, err := suite.service.Record(ctx, domain.RecordInput{
		Kind: domain.KindAdjustment,
		Entries: []domain.EntryInput{
			{AccountCode: "a", AccountName: "a", Direction: domain.Debit, Amount: 5},
			{AccountCode: "b", AccountName: "b", Direction: domain.Credit, Amount: 5},
		},
	})

	suite.Require().Error(err)
	suite.Contains(err.Error(), beginErr.Error())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
