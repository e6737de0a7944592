package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/domain"
)

func newTestRepo(t *testing.T) *LedgerRepo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	repo := NewLedgerRepo(gdb)
	require.NoError(t, repo.Migrate())
	return repo
}

func newPayment(intentID string) *domain.Payment {
	id := intentID
	return &domain.Payment{
		ReservationID:   uuid.NewString(),
		Type:            domain.PaymentDepositHold,
		Method:          domain.MethodProcessor,
		Status:          domain.StatusAuthorized,
		Amount:          decimal.RequireFromString("50.00"),
		Currency:        "EUR",
		PaymentIntentID: &id,
	}
}

func TestCorrelationIDUniqueness(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertPayment(ctx, newPayment("pi_1")))

	// the concurrency-safety mechanism: a second insert for the same
	// correlation id must fail as a duplicate key, not silently succeed
	err := repo.InsertPayment(ctx, newPayment("pi_1"))
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err), "got: %v", err)

	require.NoError(t, repo.InsertPayment(ctx, newPayment("pi_2")))
}

func TestPaymentLookupsByCorrelationID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	intentID := "pi_lookup"
	sessionID := "cs_lookup"
	chargeID := "ch_lookup"
	p := newPayment(intentID)
	p.CheckoutSessionID = &sessionID
	p.ChargeID = &chargeID
	require.NoError(t, repo.InsertPayment(ctx, p))

	byIntent, err := repo.PaymentByIntentID(ctx, intentID)
	require.NoError(t, err)
	require.NotNil(t, byIntent)

	bySession, err := repo.PaymentBySessionID(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, bySession)
	assert.Equal(t, byIntent.ID, bySession.ID)

	byCharge, err := repo.PaymentByChargeID(ctx, chargeID)
	require.NoError(t, err)
	require.NotNil(t, byCharge)

	missing, err := repo.PaymentByIntentID(ctx, "pi_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAppendActivitySerializesDetails(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	resID := uuid.NewString()

	require.NoError(t, repo.AppendActivity(ctx, resID, domain.DepositCapturedDetails{
		OriginalAmount: "200.00",
		CapturedAmount: "75.00",
		IntentID:       "pi_1",
	}, "deposit captured"))

	acts, err := repo.ActivitiesByReservation(ctx, resID)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActivityDepositCaptured, acts[0].Type)

	var details domain.DepositCapturedDetails
	require.NoError(t, json.Unmarshal(acts[0].Metadata, &details))
	assert.Equal(t, "200.00", details.OriginalAmount)
	assert.Equal(t, "75.00", details.CapturedAmount)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(tx *LedgerRepo) error {
		if err := tx.InsertPayment(ctx, newPayment("pi_tx")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	p, err := repo.PaymentByIntentID(ctx, "pi_tx")
	require.NoError(t, err)
	assert.Nil(t, p, "a failed unit of work must leave no partial state")
}
