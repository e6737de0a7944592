// Package service implements the payment and deposit reconciliation engine:
// it consumes verified processor events and advances reservation financial
// state under at-least-once, unordered delivery.
package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/processor"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/repository"
)

// Authorization holds expire a fixed 7 days after creation. Expiry is
// informational here: a scheduled process outside this engine owns release.
const holdLifetime = 7 * 24 * time.Hour

// Notifier is the best-effort side channel. Implementations must not block
// the caller and must swallow their own errors.
type Notifier interface {
	Dispatch(event string, payload any)
}

type ReconcileSvc struct {
	repo   *repository.LedgerRepo
	notify Notifier
	now    func() time.Time
}

func NewReconcileSvc(repo *repository.LedgerRepo, notify Notifier) *ReconcileSvc {
	return &ReconcileSvc{repo: repo, notify: notify, now: time.Now}
}

// Routes is the dispatch table handed to the event router.
func (s *ReconcileSvc) Routes() map[string]processor.HandlerFunc {
	return map[string]processor.HandlerFunc{
		processor.KindCheckoutCompleted:      s.handleCheckoutCompleted,
		processor.KindCheckoutExpired:        s.handleCheckoutExpired,
		processor.KindHoldCapturable:         s.handleHoldCapturable,
		processor.KindAuthorizationCancelled: s.handleAuthorizationCancelled,
		processor.KindIntentSucceeded:        s.handleIntentSucceeded,
		processor.KindIntentFailed:           s.handleIntentFailed,
		processor.KindChargeRefunded:         s.handleChargeRefunded,
		processor.KindSubAccountUpdated:      s.handleSubAccountUpdated,
	}
}

// Notification routing keys consumed by the notification worker.
const (
	KeyPaymentReceived      = "payment.received"
	KeyPaymentFailed        = "payment.failed"
	KeyPaymentExpired       = "payment.expired"
	KeyPaymentRefunded      = "payment.refunded"
	KeyReservationConfirmed = "reservation.confirmed"
	KeyDepositAuthorized    = "deposit.authorized"
	KeyDepositCaptured      = "deposit.captured"
	KeyDepositReleased      = "deposit.released"
	KeyDepositFailed        = "deposit.failed"
)

// PaymentNotice is the payload for payment.* and reservation.confirmed keys.
type PaymentNotice struct {
	ReservationID string `json:"reservation_id"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	IntentID      string `json:"intent_id,omitempty"`
	ChargeID      string `json:"charge_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// DepositNotice is the payload for deposit.* keys.
type DepositNotice struct {
	ReservationID  string     `json:"reservation_id"`
	Amount         string     `json:"amount,omitempty"`
	CapturedAmount string     `json:"captured_amount,omitempty"`
	IntentID       string     `json:"intent_id,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// notification queued inside the ledger transaction, dispatched after commit.
type notification struct {
	key     string
	payload any
}

func (s *ReconcileSvc) flush(pending []notification) {
	if s.notify == nil {
		return
	}
	for _, n := range pending {
		s.notify.Dispatch(n.key, n.payload)
	}
}

// amountFromMinor converts processor minor units (cents) to the ledger's
// fixed-point representation.
func amountFromMinor(units int64) decimal.Decimal {
	return decimal.NewFromInt(units).Shift(-2)
}
