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
)

// reservationService coordinates the reserve -> capture/release lifecycle on
// top of the posting engine. It holds no state of its own: a reservation is
// just a reserve transaction, and its remaining amount is derived from the
// child transactions recorded against it.
type reservationService struct {
	ledgerSvc  portssvc.LedgerSvcFacade
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// NewReservationService creates a new ReservationService.
func NewReservationService(ledgerSvc portssvc.LedgerSvcFacade, ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.ReservationSvcFacade {
	return &reservationService{ledgerSvc: ledgerSvc, ledgerRepo: ledgerRepo}
}

// Ensure reservationService implements the portssvc.ReservationSvcFacade interface
var _ portssvc.ReservationSvcFacade = (*reservationService)(nil)

// reservationState is the resolved view of an open reservation.
type reservationState struct {
	reserve           *domain.Transaction
	owner             domain.OwnerRef
	reservedAccountID string
	reservedAmount    int64
	remaining         int64
}

// resolve loads a reserve transaction and computes its remaining amount as
// the reserved amount minus the credits its children have posted against the
// reserved account.
func (s *reservationService) resolve(ctx context.Context, reservationID string) (*reservationState, error) {
	txn, err := s.ledgerSvc.GetTransaction(ctx, reservationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown reservation %s", apperrors.ErrInvalidReference, reservationID)
		}
		return nil, err
	}
	if txn.Kind != domain.KindReserve {
		return nil, fmt.Errorf("%w: transaction %s is a %s, not a reservation", apperrors.ErrInvalidReference, reservationID, txn.Kind)
	}
	if txn.Owner == nil {
		return nil, fmt.Errorf("%w: reservation %s carries no owner", apperrors.ErrInvalidReference, reservationID)
	}

	state := &reservationState{reserve: txn, owner: *txn.Owner}
	for _, e := range txn.Entries {
		if e.Direction == domain.Debit {
			state.reservedAccountID = e.AccountID
			state.reservedAmount = e.Amount
			break
		}
	}
	if state.reservedAccountID == "" {
		return nil, fmt.Errorf("%w: reservation %s has no reserved leg", apperrors.ErrInvalidReference, reservationID)
	}

	consumed, err := s.ledgerRepo.SumChildEntryAmounts(ctx, reservationID, state.reservedAccountID, domain.Credit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum consumed amount of reservation %s: %w", reservationID, err)
	}
	state.remaining = state.reservedAmount - consumed
	return state, nil
}

// resolveAmount applies the default: an omitted amount means the full
// remaining reserved amount.
func (s *reservationService) resolveAmount(ctx context.Context, state *reservationState, requested *int64) (int64, error) {
	amount := state.remaining
	if requested != nil {
		amount = *requested
	}
	if amount <= 0 || amount > state.remaining {
		middleware.GetLoggerFromCtx(ctx).Info("Reservation amount rejected",
			slog.String("reservation_id", state.reserve.TransactionID),
			slog.Int64("requested", amount),
			slog.Int64("remaining", state.remaining))
		return 0, fmt.Errorf("%w: reservation %s has %d remaining, requested %d", apperrors.ErrInvalidReference, state.reserve.TransactionID, state.remaining, amount)
	}
	return amount, nil
}

// Capture consumes part or all of a reservation into a sink account. The
// capture is a child transaction of the reserve; partial captures may repeat
// until the remaining amount reaches zero.
func (s *reservationService) Capture(ctx context.Context, reservationID string, req dto.ReservationActionRequest) (*domain.Transaction, error) {
	state, err := s.resolve(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	amount, err := s.resolveAmount(ctx, state, req.Amount)
	if err != nil {
		return nil, err
	}

	tag := req.Source
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Capture of reservation %s", reservationID)
	}
	parentID := reservationID
	return s.ledgerSvc.Record(ctx, domain.RecordInput{
		Kind:                domain.KindCapture,
		Description:         description,
		Owner:               &state.owner,
		ParentTransactionID: &parentID,
		Entries: []domain.EntryInput{
			{AccountCode: state.owner.ReservedCode(), AccountName: state.owner.ReservedName(), Direction: domain.Credit, Amount: amount, EnforceNonNegative: true},
			{AccountCode: domain.SinkCode(tag), AccountName: domain.SinkName(tag), Direction: domain.Debit, Amount: amount},
		},
		ExternalSource: externalRefSource(req.Source, req.ExternalID),
		ExternalID:     externalRefID(req.Source, req.ExternalID),
		Metadata:       req.Metadata,
	})
}

// Release returns part or all of a reservation to the owner's wallet.
func (s *reservationService) Release(ctx context.Context, reservationID string, req dto.ReservationActionRequest) (*domain.Transaction, error) {
	state, err := s.resolve(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	amount, err := s.resolveAmount(ctx, state, req.Amount)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Release of reservation %s", reservationID)
	}
	parentID := reservationID
	return s.ledgerSvc.Record(ctx, domain.RecordInput{
		Kind:                domain.KindRelease,
		Description:         description,
		Owner:               &state.owner,
		ParentTransactionID: &parentID,
		Entries: []domain.EntryInput{
			{AccountCode: state.owner.ReservedCode(), AccountName: state.owner.ReservedName(), Direction: domain.Credit, Amount: amount, EnforceNonNegative: true},
			{AccountCode: state.owner.WalletCode(), AccountName: state.owner.WalletName(), Direction: domain.Debit, Amount: amount},
		},
		ExternalSource: externalRefSource(req.Source, req.ExternalID),
		ExternalID:     externalRefID(req.Source, req.ExternalID),
		Metadata:       req.Metadata,
	})
}

// Complete reports the saga outcome for a reservation and dispatches to the
// matching terminal operation.
func (s *reservationService) Complete(ctx context.Context, reservationID string, req dto.CompleteReservationRequest) (*domain.Transaction, error) {
	action := dto.ReservationActionRequest{
		Amount:      req.Amount,
		Description: req.Description,
		Source:      req.Source,
		ExternalID:  req.ExternalID,
		Metadata:    req.Metadata,
	}
	switch req.Outcome {
	case dto.OutcomeCaptured:
		return s.Capture(ctx, reservationID, action)
	case dto.OutcomeReleased:
		return s.Release(ctx, reservationID, action)
	default:
		return nil, fmt.Errorf("%w: unknown reservation outcome %q", apperrors.ErrValidation, req.Outcome)
	}
}
