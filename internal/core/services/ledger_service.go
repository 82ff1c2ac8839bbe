package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallyledger/tally/internal/apperrors"
	"github.com/tallyledger/tally/internal/core/domain"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/dto"
	"github.com/tallyledger/tally/internal/middleware"
	"github.com/tallyledger/tally/internal/platform/cache"
)

// ledgerService is the posting engine. It is the only component that writes
// ledger state; the named operations are fixed entry templates fed through
// Record.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
	ownerRepo   portsrepo.OwnerRepositoryFacade
	cache       *cache.Cache
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, ownerRepo portsrepo.OwnerRepositoryFacade, c *cache.Cache) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		ownerRepo:   ownerRepo,
		cache:       c,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Record executes one posting as a single atomic unit of work:
//
//  1. Reject empty or unbalanced entry sets before touching storage.
//  2. Pre-check the idempotency key inside the transaction; the storage
//     uniqueness constraint at commit remains the authoritative backstop.
//  3. Insert the transaction row.
//  4. For each entry in caller-supplied order: get-or-create the account,
//     acquire its exclusive row lock, apply the delta, abort with
//     ErrInsufficientFunds if an enforced leg would go negative, write the
//     new balance, stage the entry row.
//  5. Write through the owner's mirrored balance if its wallet was touched.
//  6. Commit. Any failure rolls back everything.
//
// Locks are acquired per account in entry order. All built-in recipes place
// the wallet (or reserved) leg first; new recipes must keep wallet-first
// ordering or they can deadlock against existing operations.
func (s *ledgerService) Record(ctx context.Context, input domain.RecordInput) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, input.Kind)
	}
	if (input.ExternalSource == nil) != (input.ExternalID == nil) {
		return nil, fmt.Errorf("%w: external source and external id must be given together", apperrors.ErrValidation)
	}
	if !domain.BalancedEntries(input.Entries) {
		return nil, fmt.Errorf("%w: kind %s", apperrors.ErrImbalancedTransaction, input.Kind)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:       uuid.NewString(),
		Kind:                input.Kind,
		Description:         input.Description,
		Owner:               input.Owner,
		ParentTransactionID: input.ParentTransactionID,
		ExternalSource:      input.ExternalSource,
		ExternalID:          input.ExternalID,
		Metadata:            input.Metadata,
		CreatedAt:           now,
	}

	tx, err := s.ledgerRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin posting transaction: %w", err)
	}
	// No-op once the transaction is committed.
	defer func() { _ = s.ledgerRepo.Rollback(ctx, tx) }()

	if txn.HasExternalRef() {
		existing, err := s.ledgerRepo.FindTransactionByExternalRefInTx(ctx, tx, *txn.ExternalSource, *txn.ExternalID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("idempotency pre-check failed: %w", err)
		}
		if existing != nil {
			logger.Info("Duplicate external reference rejected",
				slog.String("external_source", *txn.ExternalSource),
				slog.String("external_id", *txn.ExternalID),
				slog.String("existing_transaction_id", existing.TransactionID))
			return nil, fmt.Errorf("%w: %s/%s", apperrors.ErrDuplicateTransaction, *txn.ExternalSource, *txn.ExternalID)
		}
	}

	if err := s.ledgerRepo.InsertTransactionInTx(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	var walletCode string
	if input.Owner != nil {
		walletCode = input.Owner.WalletCode()
	}

	entries := make([]domain.Entry, 0, len(input.Entries))
	touchedCodes := make([]string, 0, len(input.Entries))
	var walletBalance int64
	walletTouched := false

	for _, in := range input.Entries {
		account, err := s.accountRepo.GetOrCreateAccountForUpdate(ctx, tx, in.AccountCode, in.AccountName)
		if err != nil {
			return nil, fmt.Errorf("failed to lock account %s: %w", in.AccountCode, err)
		}

		newBalance := account.Balance + in.Direction.Delta(in.Amount)
		if in.EnforceNonNegative && newBalance < 0 {
			logger.Info("Posting rejected for insufficient funds",
				slog.String("account_code", in.AccountCode),
				slog.Int64("balance", account.Balance),
				slog.Int64("amount", in.Amount))
			return nil, fmt.Errorf("%w: account %s has %d, needs %d", apperrors.ErrInsufficientFunds, in.AccountCode, account.Balance, in.Amount)
		}

		if err := s.accountRepo.UpdateAccountBalanceInTx(ctx, tx, account.AccountID, newBalance, now); err != nil {
			return nil, fmt.Errorf("failed to update balance of account %s: %w", in.AccountCode, err)
		}

		entries = append(entries, domain.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: txn.TransactionID,
			AccountID:     account.AccountID,
			Direction:     in.Direction,
			Amount:        in.Amount,
			Metadata:      in.Metadata,
			CreatedAt:     now,
		})
		touchedCodes = append(touchedCodes, in.AccountCode)

		if walletCode != "" && in.AccountCode == walletCode {
			walletBalance = newBalance
			walletTouched = true
		}
	}

	if err := s.ledgerRepo.InsertEntriesInTx(ctx, tx, entries); err != nil {
		return nil, fmt.Errorf("failed to insert entries: %w", err)
	}

	if walletTouched {
		if err := s.ownerRepo.UpsertOwnerBalanceInTx(ctx, tx, *input.Owner, walletBalance, now); err != nil {
			return nil, fmt.Errorf("failed to mirror owner balance: %w", err)
		}
	}

	// Commit surfaces a racing idempotency collision as ErrDuplicateTransaction.
	if err := s.ledgerRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	if cerr := s.cache.InvalidateBalances(ctx, touchedCodes...); cerr != nil {
		logger.Warn("Failed to invalidate balance cache", slog.String("error", cerr.Error()))
	}

	logger.Info("Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)),
		slog.Int("entry_count", len(entries)))

	txn.Entries = entries
	return &txn, nil
}

// Deposit credits a source account and debits the owner's wallet. Neither leg
// is overdraft-enforced: sources are expected to carry negative balances.
func (s *ledgerService) Deposit(ctx context.Context, owner domain.OwnerRef, req dto.LedgerOperationRequest) (*domain.Transaction, error) {
	tag := req.Source
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Deposit from %s", displayTag(tag))
	}
	return s.Record(ctx, domain.RecordInput{
		Kind:        domain.KindDeposit,
		Description: description,
		Owner:       &owner,
		Entries: []domain.EntryInput{
			{AccountCode: owner.WalletCode(), AccountName: owner.WalletName(), Direction: domain.Debit, Amount: req.Amount},
			{AccountCode: domain.SourceCode(tag), AccountName: domain.SourceName(tag), Direction: domain.Credit, Amount: req.Amount},
		},
		ExternalSource: externalRefSource(req.Source, req.ExternalID),
		ExternalID:     externalRefID(req.Source, req.ExternalID),
		Metadata:       req.Metadata,
	})
}

// Spend moves funds from the owner's wallet into a sink. The wallet leg is
// enforced: the call fails with ErrInsufficientFunds rather than overdraw.
func (s *ledgerService) Spend(ctx context.Context, owner domain.OwnerRef, req dto.LedgerOperationRequest) (*domain.Transaction, error) {
	tag := req.Source
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Spend to %s", displayTag(tag))
	}
	return s.Record(ctx, domain.RecordInput{
		Kind:        domain.KindSpend,
		Description: description,
		Owner:       &owner,
		Entries: []domain.EntryInput{
			{AccountCode: owner.WalletCode(), AccountName: owner.WalletName(), Direction: domain.Credit, Amount: req.Amount, EnforceNonNegative: true},
			{AccountCode: domain.SinkCode(tag), AccountName: domain.SinkName(tag), Direction: domain.Debit, Amount: req.Amount},
		},
		ExternalSource: externalRefSource(req.Source, req.ExternalID),
		ExternalID:     externalRefID(req.Source, req.ExternalID),
		Metadata:       req.Metadata,
	})
}

// Reserve moves funds from the owner's wallet into its reserved sub-account
// pending a later capture or release.
func (s *ledgerService) Reserve(ctx context.Context, owner domain.OwnerRef, req dto.LedgerOperationRequest) (*domain.Transaction, error) {
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Reserve %d for %s %s", req.Amount, owner.Kind, owner.ID)
	}
	return s.Record(ctx, domain.RecordInput{
		Kind:        domain.KindReserve,
		Description: description,
		Owner:       &owner,
		Entries: []domain.EntryInput{
			{AccountCode: owner.WalletCode(), AccountName: owner.WalletName(), Direction: domain.Credit, Amount: req.Amount, EnforceNonNegative: true},
			{AccountCode: owner.ReservedCode(), AccountName: owner.ReservedName(), Direction: domain.Debit, Amount: req.Amount},
		},
		ExternalSource: externalRefSource(req.Source, req.ExternalID),
		ExternalID:     externalRefID(req.Source, req.ExternalID),
		Metadata:       req.Metadata,
	})
}

// Adjust posts caller-supplied balanced entries with no overdraft
// enforcement. This is the correction escape hatch; it may drive any account
// negative.
func (s *ledgerService) Adjust(ctx context.Context, req dto.AdjustRequest) (*domain.Transaction, error) {
	entries := make([]domain.EntryInput, len(req.Entries))
	for i, e := range req.Entries {
		name := e.AccountName
		if name == "" {
			name = e.AccountCode
		}
		entries[i] = domain.EntryInput{
			AccountCode: e.AccountCode,
			AccountName: name,
			Direction:   domain.EntryDirection(e.Direction),
			Amount:      e.Amount,
		}
	}
	return s.Record(ctx, domain.RecordInput{
		Kind:           domain.KindAdjustment,
		Description:    req.Description,
		Entries:        entries,
		ExternalSource: externalRefSource(req.Source, req.ExternalID),
		ExternalID:     externalRefID(req.Source, req.ExternalID),
		Metadata:       req.Metadata,
	})
}

// ReverseTransaction posts an adjustment carrying the direction-swapped
// entries of a prior transaction, restoring every affected balance to its
// value before that transaction. The reversal links to the original via
// parent_transaction_id for audit traversal.
func (s *ledgerService) ReverseTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.EntryInput, len(original.Entries))
	for i, e := range original.Entries {
		account, err := s.accountRepo.FindAccountByID(ctx, e.AccountID)
		if err != nil {
			logger.Error("Failed to resolve account for reversal", slog.String("account_id", e.AccountID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to resolve account %s for reversal: %w", e.AccountID, err)
		}
		entries[i] = domain.EntryInput{
			AccountCode: account.Code,
			AccountName: account.Name,
			Direction:   e.Direction.Opposite(),
			Amount:      e.Amount,
		}
	}

	parentID := original.TransactionID
	return s.Record(ctx, domain.RecordInput{
		Kind:                domain.KindAdjustment,
		Description:         fmt.Sprintf("Reversal of: %s", original.Description),
		Owner:               original.Owner,
		ParentTransactionID: &parentID,
		Entries:             entries,
	})
}

// GetTransaction retrieves a transaction together with its entries.
func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	entries, err := s.ledgerRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries of transaction %s: %w", transactionID, err)
	}
	txn.Entries = entries
	return txn, nil
}

// GetTransactionByExternalRef retrieves the transaction recorded under an
// idempotency key, together with its entries. Callers that got a duplicate
// rejection use this to fetch the original posting.
func (s *ledgerService) GetTransactionByExternalRef(ctx context.Context, externalSource, externalID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByExternalRef(ctx, externalSource, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s/%s: %w", externalSource, externalID, err)
	}
	entries, err := s.ledgerRepo.FindEntriesByTransactionID(ctx, txn.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries of transaction %s: %w", txn.TransactionID, err)
	}
	txn.Entries = entries
	return txn, nil
}

// GetTransactionChildren retrieves the child transactions of a parent, oldest first.
func (s *ledgerService) GetTransactionChildren(ctx context.Context, transactionID string) ([]domain.Transaction, error) {
	if _, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return s.ledgerRepo.FindTransactionChildren(ctx, transactionID)
}

// ListAccountEntries pages through the entry history of an account, newest first.
func (s *ledgerService) ListAccountEntries(ctx context.Context, code string, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
		return nil, nil, err
	}
	return s.ledgerRepo.ListEntriesByAccountID(ctx, account.AccountID, limit, nextToken)
}

// DeleteTransaction removes a transaction. The storage layer refuses the
// delete while entries or child transactions reference it.
func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID string) error {
	return s.ledgerRepo.DeleteTransaction(ctx, transactionID)
}

func displayTag(tag string) string {
	if tag == "" {
		return "other"
	}
	return tag
}

// externalRefSource returns the external source pointer only when the request
// carries a full idempotency key.
func externalRefSource(source, externalID string) *string {
	if source == "" || externalID == "" {
		return nil
	}
	return &source
}

// externalRefID returns the external id pointer only when the request carries
// a full idempotency key.
func externalRefID(source, externalID string) *string {
	if source == "" || externalID == "" {
		return nil
	}
	return &externalID
}
