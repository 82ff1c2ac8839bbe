package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyledger/tally/internal/apperrors"
	"github.com/tallyledger/tally/internal/core/domain"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/middleware"
	"github.com/tallyledger/tally/internal/platform/cache"
)

// auditService recomputes authoritative balances from entry history. The
// cached balance on the account row is a performance artifact; the entry
// history is the truth, and this service repairs any drift between them.
type auditService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ownerRepo   portsrepo.OwnerRepositoryFacade
	cache       *cache.Cache
}

// NewAuditService creates a new AuditService.
func NewAuditService(accountRepo portsrepo.AccountRepositoryFacade, ownerRepo portsrepo.OwnerRepositoryFacade, c *cache.Cache) portssvc.AuditSvcFacade {
	return &auditService{accountRepo: accountRepo, ownerRepo: ownerRepo, cache: c}
}

// Ensure auditService implements the portssvc.AuditSvcFacade interface
var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// CalculateBalance returns the balance recomputed from the account's full
// entry history. It never reads the cached balance.
func (s *auditService) CalculateBalance(ctx context.Context, code string) (int64, error) {
	account, err := s.findAccount(ctx, code)
	if err != nil {
		return 0, err
	}
	return s.accountRepo.CalculateBalance(ctx, account.AccountID)
}

// ReconcileAccount recomputes the balance from entry history and overwrites
// the cached value when it has drifted. Returns the calculated value either way.
func (s *auditService) ReconcileAccount(ctx context.Context, code string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.findAccount(ctx, code)
	if err != nil {
		return 0, err
	}

	calculated, err := s.accountRepo.CalculateBalance(ctx, account.AccountID)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate balance of account %s: %w", code, err)
	}

	if calculated == account.Balance {
		logger.Info("Account balance verified", slog.String("account_code", code), slog.Int64("balance", calculated))
		return calculated, nil
	}

	logger.Warn("Account balance drift detected",
		slog.String("account_code", code),
		slog.Int64("cached", account.Balance),
		slog.Int64("calculated", calculated))

	if err := s.accountRepo.SetAccountBalance(ctx, account.AccountID, calculated, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to repair balance of account %s: %w", code, err)
	}
	if cerr := s.cache.InvalidateBalances(ctx, code); cerr != nil {
		logger.Warn("Failed to invalidate balance cache", slog.String("error", cerr.Error()))
	}
	return calculated, nil
}

// ReconcileOwner reconciles the owner's wallet account and mirrors the
// repaired value into the owner's cached balance row.
func (s *auditService) ReconcileOwner(ctx context.Context, owner domain.OwnerRef) (int64, error) {
	calculated, err := s.ReconcileAccount(ctx, owner.WalletCode())
	if err != nil {
		return 0, err
	}
	if err := s.ownerRepo.UpsertOwnerBalance(ctx, owner, calculated, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("failed to mirror reconciled balance of %s %s: %w", owner.Kind, owner.ID, err)
	}
	return calculated, nil
}

func (s *auditService) findAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
		return nil, err
	}
	return account, nil
}
