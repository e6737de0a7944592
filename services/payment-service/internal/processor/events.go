// Package processor models the inbound payment-processor events and routes
// them to their handlers. Payloads are lean structs holding only the fields
// the reconciliation engine reads; everything else in the processor's
// objects is ignored.
package processor

import "encoding/json"

// Event kinds delivered by the processor. The processor may add kinds over
// time; anything not listed here is acknowledged and logged by the router.
const (
	KindCheckoutCompleted      = "checkout.session.completed"
	KindCheckoutExpired        = "checkout.session.expired"
	KindHoldCapturable         = "payment_intent.amount_capturable_updated"
	KindAuthorizationCancelled = "payment_intent.canceled"
	KindIntentSucceeded        = "payment_intent.succeeded"
	KindIntentFailed           = "payment_intent.payment_failed"
	KindChargeRefunded         = "charge.refunded"
	KindSubAccountUpdated      = "account.updated"
)

// MetaReservationID is the metadata key carrying the reservation join key on
// sessions and intents created by the checkout subsystem.
const MetaReservationID = "reservation_id"

// MetaPurpose distinguishes rental from deposit intents when no ledger row
// exists yet (e.g. an authorization that failed before a hold was recorded).
const MetaPurpose = "purpose"

const (
	PurposeRental  = "rental"
	PurposeDeposit = "deposit"
)

// InboundEvent is a signature-verified event as handed to the router.
// Account is the processor sub-account the event claims to originate from
// (empty on platform-surface events).
type InboundEvent struct {
	ID      string
	Kind    string
	Account string
	Raw     json.RawMessage
}

// CheckoutSession is the data.object of checkout.session.* events. Customer
// and PaymentMethod are present when a reusable payment method was captured
// alongside the rental charge.
type CheckoutSession struct {
	ID            string            `json:"id"`
	Customer      string            `json:"customer"`
	PaymentIntent string            `json:"payment_intent"`
	PaymentMethod string            `json:"payment_method"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentIntent is the data.object of payment_intent.* events. Amounts are
// minor units (cents).
type PaymentIntent struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	AmountCapturable int64             `json:"amount_capturable"`
	AmountReceived   int64             `json:"amount_received"`
	Currency         string            `json:"currency"`
	Customer         string            `json:"customer"`
	PaymentMethod    string            `json:"payment_method"`
	LatestCharge     string            `json:"latest_charge"`
	Status           string            `json:"status"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *PaymentError     `json:"last_payment_error"`
}

type PaymentError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Charge is the data.object of charge.* events.
type Charge struct {
	ID             string            `json:"id"`
	PaymentIntent  string            `json:"payment_intent"`
	Amount         int64             `json:"amount"`
	AmountRefunded int64             `json:"amount_refunded"`
	Currency       string            `json:"currency"`
	Refunded       bool              `json:"refunded"`
	Metadata       map[string]string `json:"metadata"`
}

// SubAccount is the data.object of account.updated events.
type SubAccount struct {
	ID               string `json:"id"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

// Unmarshal decodes an event payload into one of the structs above.
func Unmarshal[T any](raw json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		var zero T
		return zero, err
	}
	return t, nil
}
