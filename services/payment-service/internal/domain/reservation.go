package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationOngoing   ReservationStatus = "ongoing"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationRejected  ReservationStatus = "rejected"
)

// Reservation is owned by the booking subsystem. This engine reads it for
// validation and writes Status (pending→confirmed) and the deposit fields.
type Reservation struct {
	ID      string `gorm:"primaryKey;size:36"`
	StoreID string `gorm:"index;size:36"`
	Store   *Store

	Status        ReservationStatus `gorm:"index;size:16"`
	DepositStatus DepositStatus     `gorm:"index;size:16;default:none"`

	// Set when a hold is authorized, consumed by later capture calls.
	DepositIntentID               *string `gorm:"size:64"`
	DepositAuthorizationExpiresAt *time.Time

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2)"`
	Deposit  decimal.Decimal `gorm:"type:decimal(12,2)"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2)"`
	Currency string          `gorm:"size:3"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a tenant. SubAccountID is the processor sub-account the store's
// webhook traffic must originate from; it is the tenant-isolation boundary.
type Store struct {
	ID           string `gorm:"primaryKey;size:36"`
	Name         string `gorm:"size:120"`
	SubAccountID string `gorm:"uniqueIndex;size:64"`

	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
