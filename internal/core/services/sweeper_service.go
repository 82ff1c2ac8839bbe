package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tallyledger/tally/internal/apperrors"
	portsrepo "github.com/tallyledger/tally/internal/core/ports/repositories"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/dto"
	"github.com/tallyledger/tally/internal/middleware"
)

const sweepBatchLimit = 100

// sweeperService force-releases reservations left open past a deadline. It is
// an operator tool built on the reservation coordinator, not part of the
// posting engine; every sweep is an ordinary release transaction.
type sweeperService struct {
	ledgerRepo     portsrepo.LedgerRepositoryFacade
	reservationSvc portssvc.ReservationSvcFacade
	deadline       time.Duration
}

// NewSweeperService creates a new SweeperService. Reservations older than
// deadline with a remaining reserved amount are released on each sweep.
func NewSweeperService(ledgerRepo portsrepo.LedgerRepositoryFacade, reservationSvc portssvc.ReservationSvcFacade, deadline time.Duration) portssvc.SweeperSvcFacade {
	return &sweeperService{ledgerRepo: ledgerRepo, reservationSvc: reservationSvc, deadline: deadline}
}

// Ensure sweeperService implements the portssvc.SweeperSvcFacade interface
var _ portssvc.SweeperSvcFacade = (*sweeperService)(nil)

// SweepStaleReservations releases every reservation created before the
// deadline that still holds a remaining amount. Lock timeouts are retried
// with backoff; other failures skip the reservation until the next sweep.
func (s *sweeperService) SweepStaleReservations(ctx context.Context) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	cutoff := time.Now().UTC().Add(-s.deadline)

	stale, err := s.ledgerRepo.ListStaleReservations(ctx, cutoff, sweepBatchLimit)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, txn := range stale {
		reservationID := txn.TransactionID
		description := "Expired reservation swept"
		op := func() error {
			_, err := s.reservationSvc.Release(ctx, reservationID, dto.ReservationActionRequest{Description: description})
			if err != nil && !apperrors.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
		if err := backoff.Retry(op, policy); err != nil {
			logger.Warn("Failed to sweep reservation",
				slog.String("reservation_id", reservationID),
				slog.String("error", err.Error()))
			continue
		}
		released++
		logger.Info("Stale reservation released", slog.String("reservation_id", reservationID))
	}
	return released, nil
}
