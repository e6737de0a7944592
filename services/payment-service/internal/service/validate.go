package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/domain"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/processor"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/repository"
)

var (
	ErrMalformedReservationID = errors.New("malformed reservation id")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrSubAccountMismatch     = errors.New("sub-account mismatch")
)

// validateReservation confirms the event belongs to the reservation's store
// before any mutation. A sub-account mismatch means metadata tampering or a
// cross-tenant leak and is the single control keeping one store's webhook
// traffic away from another store's reservation.
func (s *ReconcileSvc) validateReservation(ctx context.Context, tx *repository.LedgerRepo, reservationID, claimedAccount string) (*domain.Reservation, error) {
	// fixed-length id format check before any lookup
	if _, err := uuid.Parse(reservationID); err != nil {
		return nil, ErrMalformedReservationID
	}
	res, err := tx.ReservationByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}
	if claimedAccount != "" {
		expected := ""
		if res.Store != nil {
			expected = res.Store.SubAccountID
		}
		if claimedAccount != expected {
			log.Printf("[reconcile][SECURITY] sub-account mismatch reservation=%s expected=%s received=%s",
				reservationID, expected, claimedAccount)
			return nil, ErrSubAccountMismatch
		}
	}
	return res, nil
}

// ackOnValidation maps validation failures to acknowledged no-ops so the
// processor stops retrying events that can never succeed. Storage errors
// pass through and become a retryable 5xx at the transport.
func ackOnValidation(err error, evt processor.InboundEvent) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMalformedReservationID),
		errors.Is(err, ErrReservationNotFound),
		errors.Is(err, ErrSubAccountMismatch):
		log.Printf("[reconcile] drop %s id=%s: %v", evt.Kind, evt.ID, err)
		return nil
	default:
		return err
	}
}
