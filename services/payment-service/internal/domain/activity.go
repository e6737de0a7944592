package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityPaymentReceived   ActivityType = "payment_received"
	ActivityPaymentFailed     ActivityType = "payment_failed"
	ActivityPaymentExpired    ActivityType = "payment_expired"
	ActivityPaymentRefunded   ActivityType = "payment_refunded"
	ActivityConfirmed         ActivityType = "confirmed"
	ActivityDepositAuthorized ActivityType = "deposit_authorized"
	ActivityDepositCaptured   ActivityType = "deposit_captured"
	ActivityDepositReleased   ActivityType = "deposit_released"
	ActivityDepositFailed     ActivityType = "deposit_failed"
)

// Activity is one append-only audit row. Never updated, never deleted.
type Activity struct {
	ID            string       `gorm:"primaryKey;size:36"`
	ReservationID string       `gorm:"index;size:36"`
	Type          ActivityType `gorm:"index;size:24"`
	Description   string       `gorm:"size:255"`
	Metadata      datatypes.JSON
	CreatedAt     time.Time
}

// ActivityDetails is the structured metadata attached to an activity row.
// One struct per activity type so a deposit_captured entry always carries
// its captured and original amounts.
type ActivityDetails interface {
	ActivityType() ActivityType
}

type PaymentReceivedDetails struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	SessionID string `json:"session_id,omitempty"`
	IntentID  string `json:"intent_id,omitempty"`
}

func (PaymentReceivedDetails) ActivityType() ActivityType { return ActivityPaymentReceived }

type PaymentFailedDetails struct {
	IntentID string `json:"intent_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (PaymentFailedDetails) ActivityType() ActivityType { return ActivityPaymentFailed }

type PaymentExpiredDetails struct {
	SessionID string `json:"session_id"`
}

func (PaymentExpiredDetails) ActivityType() ActivityType { return ActivityPaymentExpired }

type PaymentRefundedDetails struct {
	ChargeID       string `json:"charge_id"`
	AmountRefunded string `json:"amount_refunded"`
	Currency       string `json:"currency,omitempty"`
}

func (PaymentRefundedDetails) ActivityType() ActivityType { return ActivityPaymentRefunded }

type ConfirmedDetails struct {
	SessionID string `json:"session_id,omitempty"`
}

func (ConfirmedDetails) ActivityType() ActivityType { return ActivityConfirmed }

type DepositAuthorizedDetails struct {
	Amount    string    `json:"amount"`
	IntentID  string    `json:"intent_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (DepositAuthorizedDetails) ActivityType() ActivityType { return ActivityDepositAuthorized }

type DepositCapturedDetails struct {
	OriginalAmount string `json:"original_amount"`
	CapturedAmount string `json:"captured_amount"`
	IntentID       string `json:"intent_id"`
}

func (DepositCapturedDetails) ActivityType() ActivityType { return ActivityDepositCaptured }

type DepositReleasedDetails struct {
	Amount   string `json:"amount"`
	IntentID string `json:"intent_id"`
}

func (DepositReleasedDetails) ActivityType() ActivityType { return ActivityDepositReleased }

type DepositFailedDetails struct {
	IntentID string `json:"intent_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (DepositFailedDetails) ActivityType() ActivityType { return ActivityDepositFailed }
