package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tallyledger/tally/internal/apperrors"
	"github.com/tallyledger/tally/internal/core/domain"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/dto"
	"github.com/tallyledger/tally/internal/middleware"
	"github.com/tallyledger/tally/internal/platform/cache"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	cache       *cache.Cache
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, c *cache.Cache) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, cache: c}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// FindOrCreateAccount atomically returns the existing account for the code or
// creates it with balance zero.
func (s *accountService) FindOrCreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	return s.accountRepo.FindOrCreateAccount(ctx, req.Code, req.Name)
}

// GetAccountByCode retrieves an account by its deterministic code. The cached
// balance read goes through the redis cache when one is configured.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
		return nil, err
	}

	if cached, ok := s.cache.GetBalance(ctx, code); ok {
		account.Balance = cached
		return account, nil
	}

	if cerr := s.cache.SetBalance(ctx, code, account.Balance); cerr != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to write balance cache", slog.String("error", cerr.Error()))
	}
	return account, nil
}

// DeleteAccount removes an account. The storage layer refuses the delete
// while any entry references it.
func (s *accountService) DeleteAccount(ctx context.Context, code string) error {
	if err := s.accountRepo.DeleteAccount(ctx, code); err != nil {
		return err
	}
	if cerr := s.cache.InvalidateBalances(ctx, code); cerr != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to invalidate balance cache", slog.String("error", cerr.Error()))
	}
	return nil
}
