package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Routing keys published by the reconciliation engine.
const (
	RKPaymentReceived      = "payment.received"
	RKPaymentFailed        = "payment.failed"
	RKPaymentExpired       = "payment.expired"
	RKPaymentRefunded      = "payment.refunded"
	RKReservationConfirmed = "reservation.confirmed"
	RKDepositAuthorized    = "deposit.authorized"
	RKDepositCaptured      = "deposit.captured"
	RKDepositReleased      = "deposit.released"
	RKDepositFailed        = "deposit.failed"
)

// Keys returns every routing key this worker binds to.
func Keys() []string {
	return []string{
		RKPaymentReceived, RKPaymentFailed, RKPaymentExpired, RKPaymentRefunded,
		RKReservationConfirmed,
		RKDepositAuthorized, RKDepositCaptured, RKDepositReleased, RKDepositFailed,
	}
}

type PaymentEvent struct {
	ReservationID string `json:"reservation_id"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	IntentID      string `json:"intent_id,omitempty"`
	ChargeID      string `json:"charge_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type DepositEvent struct {
	ReservationID  string     `json:"reservation_id"`
	Amount         string     `json:"amount,omitempty"`
	CapturedAmount string     `json:"captured_amount,omitempty"`
	IntentID       string     `json:"intent_id,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
