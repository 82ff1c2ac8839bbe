package services

import (
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/platform/cache"
	"github.com/tallyledger/tally/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, c *cache.Cache) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The ledger service is the posting engine everything else drives.
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo, repos.OwnerRepo, c)

	container.Reservation = NewReservationService(container.Ledger, repos.LedgerRepo)
	container.Audit = NewAuditService(repos.AccountRepo, repos.OwnerRepo, c)
	container.Account = NewAccountService(repos.AccountRepo, c)
	container.Sweeper = NewSweeperService(repos.LedgerRepo, container.Reservation, cfg.SweeperDeadline)

	return container
}
