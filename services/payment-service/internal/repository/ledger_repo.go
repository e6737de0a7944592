package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/domain"
)

// LedgerRepo is the durable store behind the reconciliation engine:
// payments, reservations, stores and the append-only activity log.
type LedgerRepo struct{ db *gorm.DB }

func NewLedgerRepo(db *gorm.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) Migrate() error {
	return r.db.AutoMigrate(
		&domain.Store{},
		&domain.Reservation{},
		&domain.Payment{},
		&domain.Activity{},
	)
}

// WithinTx runs fn in one transaction. Every event is processed entirely
// inside one of these: existence check, state transition, payment upsert
// and activity append commit together or not at all.
func (r *LedgerRepo) WithinTx(ctx context.Context, fn func(tx *LedgerRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepo{db: tx})
	})
}

func (r *LedgerRepo) ReservationByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).Preload("Store").First(&res, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *LedgerRepo) PaymentBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	return r.paymentBy(ctx, "checkout_session_id = ?", sessionID)
}

func (r *LedgerRepo) PaymentByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	return r.paymentBy(ctx, "payment_intent_id = ?", intentID)
}

func (r *LedgerRepo) PaymentByChargeID(ctx context.Context, chargeID string) (*domain.Payment, error) {
	return r.paymentBy(ctx, "charge_id = ?", chargeID)
}

func (r *LedgerRepo) paymentBy(ctx context.Context, query string, arg string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).First(&p, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LedgerRepo) PaymentsByReservation(ctx context.Context, reservationID string) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *LedgerRepo) InsertPayment(ctx context.Context, p *domain.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *LedgerRepo) SavePayment(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SetDepositStatus flips the reservation's deposit state and, when a hold is
// authorized, records the intent id and expiry used for later capture calls.
func (r *LedgerRepo) SetDepositStatus(ctx context.Context, res *domain.Reservation, status domain.DepositStatus, intentID *string, expiresAt *time.Time) error {
	res.DepositStatus = status
	if intentID != nil {
		res.DepositIntentID = intentID
	}
	if expiresAt != nil {
		res.DepositAuthorizationExpiresAt = expiresAt
	}
	return r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("id = ?", res.ID).
		Updates(map[string]any{
			"deposit_status":                   res.DepositStatus,
			"deposit_intent_id":                res.DepositIntentID,
			"deposit_authorization_expires_at": res.DepositAuthorizationExpiresAt,
		}).Error
}

func (r *LedgerRepo) SetReservationStatus(ctx context.Context, res *domain.Reservation, status domain.ReservationStatus) error {
	res.Status = status
	return r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("id = ?", res.ID).
		Update("status", status).Error
}

// AppendActivity writes one audit row. There is deliberately no update or
// delete counterpart.
func (r *LedgerRepo) AppendActivity(ctx context.Context, reservationID string, details domain.ActivityDetails, description string) error {
	meta, err := json.Marshal(details)
	if err != nil {
		return err
	}
	a := domain.Activity{
		ID:            uuid.NewString(),
		ReservationID: reservationID,
		Type:          details.ActivityType(),
		Description:   description,
		Metadata:      meta,
	}
	return r.db.WithContext(ctx).Create(&a).Error
}

func (r *LedgerRepo) ActivitiesByReservation(ctx context.Context, reservationID string) ([]domain.Activity, error) {
	var out []domain.Activity
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *LedgerRepo) StoreBySubAccount(ctx context.Context, subAccountID string) (*domain.Store, error) {
	var s domain.Store
	err := r.db.WithContext(ctx).First(&s, "sub_account_id = ?", subAccountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *LedgerRepo) SaveStore(ctx context.Context, s *domain.Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// IsDuplicateKey reports whether err is a unique-constraint violation. A
// duplicate key on insert means a concurrent delivery already applied the
// event, which callers treat as a successful no-op.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
