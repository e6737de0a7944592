package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentRental         PaymentType = "rental"
	PaymentDeposit        PaymentType = "deposit"
	PaymentDepositReturn  PaymentType = "deposit_return"
	PaymentDamage         PaymentType = "damage"
	PaymentDepositHold    PaymentType = "deposit_hold"
	PaymentDepositCapture PaymentType = "deposit_capture"
	PaymentAdjustment     PaymentType = "adjustment"
)

type PaymentMethod string

const (
	MethodProcessor PaymentMethod = "processor"
	MethodCash      PaymentMethod = "cash"
	MethodCard      PaymentMethod = "card"
	MethodTransfer  PaymentMethod = "transfer"
	MethodCheck     PaymentMethod = "check"
	MethodOther     PaymentMethod = "other"
)

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusAuthorized PaymentStatus = "authorized"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusRefunded   PaymentStatus = "refunded"
	StatusCancelled  PaymentStatus = "cancelled"
)

// Payment is one money movement tied to exactly one reservation. The
// processor correlation ids are unique so a duplicate delivery can never
// create a second success row; rows are mutated in place on later events
// for the same correlation id and never deleted by this engine.
type Payment struct {
	ID            string `gorm:"primaryKey;size:36"`
	ReservationID string `gorm:"index;size:36"`

	Type   PaymentType   `gorm:"index;size:20"`
	Method PaymentMethod `gorm:"size:12"`
	Status PaymentStatus `gorm:"index;size:12"`

	Amount   decimal.Decimal `gorm:"type:decimal(12,2)"`
	Currency string          `gorm:"size:3"`

	PaymentIntentID   *string `gorm:"uniqueIndex;size:64"`
	CheckoutSessionID *string `gorm:"uniqueIndex;size:72"`
	ChargeID          *string `gorm:"uniqueIndex;size:64"`

	CapturedAmount         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	AuthorizationExpiresAt *time.Time
	PaidAt                 *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
