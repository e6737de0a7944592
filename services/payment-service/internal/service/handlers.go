package service

import (
	"context"
	"log"
	"strings"

	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/domain"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/processor"
	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/repository"
)

// handleCheckoutCompleted applies a rental-payment completion. Duplicate
// deliveries no-op once the payment row is completed; confirmation side
// effects (activity entries, notifications, the deposit leaving none) run
// only the first time the reservation leaves pending.
func (s *ReconcileSvc) handleCheckoutCompleted(ctx context.Context, evt processor.InboundEvent) error {
	sess, err := processor.Unmarshal[processor.CheckoutSession](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad checkout payload id=%s: %v", evt.ID, err)
		return nil
	}
	resID := sess.Metadata[processor.MetaReservationID]
	if resID == "" {
		log.Printf("[reconcile] checkout %s without reservation metadata, skipping", sess.ID)
		return nil
	}

	var pending []notification
	err = s.repo.WithinTx(ctx, func(tx *repository.LedgerRepo) error {
		res, err := s.validateReservation(ctx, tx, resID, evt.Account)
		if err != nil {
			return err
		}

		existing, err := tx.PaymentBySessionID(ctx, sess.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == domain.StatusCompleted {
			return nil // duplicate delivery
		}

		now := s.now().UTC()
		amount := amountFromMinor(sess.AmountTotal)
		currency := strings.ToUpper(sess.Currency)
		var intentID *string
		if sess.PaymentIntent != "" {
			intentID = &sess.PaymentIntent
		}

		if existing == nil {
			p := &domain.Payment{
				ReservationID:     res.ID,
				Type:              domain.PaymentRental,
				Method:            domain.MethodProcessor,
				Status:            domain.StatusCompleted,
				Amount:            amount,
				Currency:          currency,
				CheckoutSessionID: &sess.ID,
				PaymentIntentID:   intentID,
				PaidAt:            &now,
			}
			if err := tx.InsertPayment(ctx, p); err != nil {
				if repository.IsDuplicateKey(err) {
					return nil // concurrent delivery won the insert
				}
				return err
			}
		} else {
			existing.Status = domain.StatusCompleted
			existing.Amount = amount
			if intentID != nil {
				existing.PaymentIntentID = intentID
			}
			existing.PaidAt = &now
			if err := tx.SavePayment(ctx, existing); err != nil {
				return err
			}
		}

		if res.Status != domain.ReservationPending {
			// Idempotent correction only, e.g. the success page already
			// confirmed the reservation before the webhook landed.
			return nil
		}
		if err := tx.SetReservationStatus(ctx, res, domain.ReservationConfirmed); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, res.ID, domain.PaymentReceivedDetails{
			Amount:    amount.StringFixed(2),
			Currency:  currency,
			SessionID: sess.ID,
			IntentID:  sess.PaymentIntent,
		}, "rental payment received"); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, res.ID, domain.ConfirmedDetails{SessionID: sess.ID}, "reservation confirmed"); err != nil {
			return err
		}
		pending = append(pending,
			notification{KeyPaymentReceived, PaymentNotice{
				ReservationID: res.ID,
				Amount:        amount.StringFixed(2),
				Currency:      currency,
				SessionID:     sess.ID,
				IntentID:      sess.PaymentIntent,
			}},
			notification{KeyReservationConfirmed, PaymentNotice{ReservationID: res.ID}},
		)

		// The deposit leaves none exactly once, at first rental completion.
		if res.Deposit.IsPositive() && res.DepositStatus == domain.DepositNone {
			next := domain.DepositPending
			if sess.Customer != "" && sess.PaymentMethod != "" {
				next = domain.DepositCardSaved
			}
			if err := tx.SetDepositStatus(ctx, res, next, nil, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ackOnValidation(err, evt)
	}
	s.flush(pending)
	return nil
}

// handleCheckoutExpired cancels a rental payment whose checkout lapsed. The
// reservation itself stays with the booking subsystem.
func (s *ReconcileSvc) handleCheckoutExpired(ctx context.Context, evt processor.InboundEvent) error {
	sess, err := processor.Unmarshal[processor.CheckoutSession](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad checkout payload id=%s: %v", evt.ID, err)
		return nil
	}
	resID := sess.Metadata[processor.MetaReservationID]
	if resID == "" {
		log.Printf("[reconcile] expired checkout %s without reservation metadata, skipping", sess.ID)
		return nil
	}

	var pending []notification
	err = s.repo.WithinTx(ctx, func(tx *repository.LedgerRepo) error {
		res, err := s.validateReservation(ctx, tx, resID, evt.Account)
		if err != nil {
			return err
		}
		p, err := tx.PaymentBySessionID(ctx, sess.ID)
		if err != nil {
			return err
		}
		if p == nil || p.Status != domain.StatusPending {
			return nil // nothing pending to expire
		}
		p.Status = domain.StatusCancelled
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, res.ID, domain.PaymentExpiredDetails{SessionID: sess.ID}, "checkout session expired"); err != nil {
			return err
		}
		pending = append(pending, notification{KeyPaymentExpired, PaymentNotice{
			ReservationID: res.ID,
			SessionID:     sess.ID,
		}})
		return nil
	})
	if err != nil {
		return ackOnValidation(err, evt)
	}
	s.flush(pending)
	return nil
}

// handleHoldCapturable authorizes the deposit: the processor reports the
// hold has capturable funds. A hold is created exactly once per intent, so
// any existing row for the intent means the event was already applied.
func (s *ReconcileSvc) handleHoldCapturable(ctx context.Context, evt processor.InboundEvent) error {
	pi, err := processor.Unmarshal[processor.PaymentIntent](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad intent payload id=%s: %v", evt.ID, err)
		return nil
	}
	resID := pi.Metadata[processor.MetaReservationID]
	if resID == "" {
		log.Printf("[reconcile] intent %s without reservation metadata, skipping", pi.ID)
		return nil
	}

	var pending []notification
	err = s.repo.WithinTx(ctx, func(tx *repository.LedgerRepo) error {
		res, err := s.validateReservation(ctx, tx, resID, evt.Account)
		if err != nil {
			return err
		}
		existing, err := tx.PaymentByIntentID(ctx, pi.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil // hold already recorded for this intent
		}
		if !res.DepositStatus.CanTransitionTo(domain.DepositAuthorized) {
			log.Printf("[reconcile] intent %s: deposit %s cannot authorize, skipping", pi.ID, res.DepositStatus)
			return nil
		}

		now := s.now().UTC()
		expires := now.Add(holdLifetime)
		amount := amountFromMinor(pi.AmountCapturable)
		intentID := pi.ID
		hold := &domain.Payment{
			ReservationID:          res.ID,
			Type:                   domain.PaymentDepositHold,
			Method:                 domain.MethodProcessor,
			Status:                 domain.StatusAuthorized,
			Amount:                 amount,
			Currency:               strings.ToUpper(pi.Currency),
			PaymentIntentID:        &intentID,
			AuthorizationExpiresAt: &expires,
		}
		if err := tx.InsertPayment(ctx, hold); err != nil {
			if repository.IsDuplicateKey(err) {
				return nil
			}
			return err
		}
		if err := tx.SetDepositStatus(ctx, res, domain.DepositAuthorized, &intentID, &expires); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, res.ID, domain.DepositAuthorizedDetails{
			Amount:    amount.StringFixed(2),
			IntentID:  pi.ID,
			ExpiresAt: expires,
		}, "deposit hold authorized"); err != nil {
			return err
		}
		pending = append(pending, notification{KeyDepositAuthorized, DepositNotice{
			ReservationID: res.ID,
			Amount:        amount.StringFixed(2),
			IntentID:      pi.ID,
			ExpiresAt:     &expires,
		}})
		return nil
	})
	if err != nil {
		return ackOnValidation(err, evt)
	}
	s.flush(pending)
	return nil
}

// handleIntentSucceeded finishes either a deposit capture (possibly
// partial) or, as a correction path, a still-pending rental payment.
func (s *ReconcileSvc) handleIntentSucceeded(ctx context.Context, evt processor.InboundEvent) error {
	pi, err := processor.Unmarshal[processor.PaymentIntent](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad intent payload id=%s: %v", evt.ID, err)
		return nil
	}

	var pending []notification
	err = s.repo.WithinTx(ctx, func(tx *repository.LedgerRepo) error {
		p, err := tx.PaymentByIntentID(ctx, pi.ID)
		if err != nil {
			return err
		}
		if p == nil {
			log.Printf("[reconcile] succeeded intent %s has no ledger row, skipping", pi.ID)
			return nil
		}
		res, err := s.validateReservation(ctx, tx, p.ReservationID, evt.Account)
		if err != nil {
			return err
		}
		now := s.now().UTC()

		switch p.Type {
		case domain.PaymentDepositHold:
			if p.Status == domain.StatusCompleted {
				return nil // capture already applied
			}
			captured := amountFromMinor(pi.AmountReceived)
			if captured.GreaterThan(p.Amount) {
				log.Printf("[reconcile] intent %s captured %s exceeds hold %s, skipping",
					pi.ID, captured.StringFixed(2), p.Amount.StringFixed(2))
				return nil
			}
			if !res.DepositStatus.CanTransitionTo(domain.DepositCaptured) {
				log.Printf("[reconcile] intent %s: deposit %s cannot capture, skipping", pi.ID, res.DepositStatus)
				return nil
			}
			p.Status = domain.StatusCompleted
			p.CapturedAmount = &captured
			p.PaidAt = &now
			if err := tx.SavePayment(ctx, p); err != nil {
				return err
			}
			if captured.IsPositive() {
				var chargeID *string
				if pi.LatestCharge != "" {
					chargeID = &pi.LatestCharge
				}
				capture := &domain.Payment{
					ReservationID: res.ID,
					Type:          domain.PaymentDepositCapture,
					Method:        domain.MethodProcessor,
					Status:        domain.StatusCompleted,
					Amount:        captured,
					Currency:      p.Currency,
					ChargeID:      chargeID,
					PaidAt:        &now,
				}
				if err := tx.InsertPayment(ctx, capture); err != nil {
					if !repository.IsDuplicateKey(err) {
						return err
					}
				}
			}
			if err := tx.SetDepositStatus(ctx, res, domain.DepositCaptured, nil, nil); err != nil {
				return err
			}
			if err := tx.AppendActivity(ctx, res.ID, domain.DepositCapturedDetails{
				OriginalAmount: p.Amount.StringFixed(2),
				CapturedAmount: captured.StringFixed(2),
				IntentID:       pi.ID,
			}, "deposit captured"); err != nil {
				return err
			}
			pending = append(pending, notification{KeyDepositCaptured, DepositNotice{
				ReservationID:  res.ID,
				Amount:         p.Amount.StringFixed(2),
				CapturedAmount: captured.StringFixed(2),
				IntentID:       pi.ID,
			}})

		case domain.PaymentRental:
			if p.Status != domain.StatusPending {
				return nil
			}
			p.Status = domain.StatusCompleted
			p.PaidAt = &now
			if pi.LatestCharge != "" && p.ChargeID == nil {
				p.ChargeID = &pi.LatestCharge
			}
			if err := tx.SavePayment(ctx, p); err != nil {
				return err
			}
			if err := tx.AppendActivity(ctx, res.ID, domain.PaymentReceivedDetails{
				Amount:   p.Amount.StringFixed(2),
				Currency: p.Currency,
				IntentID: pi.ID,
			}, "rental payment received"); err != nil {
				return err
			}
			pending = append(pending, notification{KeyPaymentReceived, PaymentNotice{
				ReservationID: res.ID,
				Amount:        p.Amount.StringFixed(2),
				Currency:      p.Currency,
				IntentID:      pi.ID,
			}})

		default:
			log.Printf("[reconcile] succeeded intent %s on %s payment, skipping", pi.ID, p.Type)
		}
		return nil
	})
	if err != nil {
		return ackOnValidation(err, evt)
	}
	s.flush(pending)
	return nil
}

// handleIntentFailed records a failed rental payment or a failed deposit
// authorization/capture, keeping the processor-reported error in the trail.
func (s *ReconcileSvc) handleIntentFailed(ctx context.Context, evt processor.InboundEvent) error {
	pi, err := processor.Unmarshal[processor.PaymentIntent](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad intent payload id=%s: %v", evt.ID, err)
		return nil
	}
	reason := ""
	if pi.LastPaymentError != nil {
		reason = pi.LastPaymentError.Message
	}

	var pending []notification
	err = s.repo.WithinTx(ctx, func(tx *repository.LedgerRepo) error {
		p, err := tx.PaymentByIntentID(ctx, pi.ID)
		if err != nil {
			return err
		}
		if p != nil {
			res, err := s.validateReservation(ctx, tx, p.ReservationID, evt.Account)
			if err != nil {
				return err
			}
			switch p.Type {
			case domain.PaymentDepositHold:
				// only a live authorization can fail; a stale redelivery
				// after capture or release must not touch the settled row
				if p.Status != domain.StatusAuthorized {
					return nil
				}
				p.Status = domain.StatusFailed
				if err := tx.SavePayment(ctx, p); err != nil {
					return err
				}
				if res.DepositStatus.CanTransitionTo(domain.DepositFailed) {
					if err := tx.SetDepositStatus(ctx, res, domain.DepositFailed, nil, nil); err != nil {
						return err
					}
				}
				if err := tx.AppendActivity(ctx, res.ID, domain.DepositFailedDetails{
					IntentID: pi.ID,
					Error:    reason,
				}, "deposit failed"); err != nil {
					return err
				}
				pending = append(pending, notification{KeyDepositFailed, DepositNotice{
					ReservationID: res.ID,
					IntentID:      pi.ID,
					Reason:        reason,
				}})
			case domain.PaymentRental:
				if p.Status != domain.StatusPending {
					return nil
				}
				p.Status = domain.StatusFailed
				if err := tx.SavePayment(ctx, p); err != nil {
					return err
				}
				// reservation stays pending; retrying checkout is the
				// customer's path forward
				if err := tx.AppendActivity(ctx, res.ID, domain.PaymentFailedDetails{
					IntentID: pi.ID,
					Error:    reason,
				}, "rental payment failed"); err != nil {
					return err
				}
				pending = append(pending, notification{KeyPaymentFailed, PaymentNotice{
					ReservationID: res.ID,
					IntentID:      pi.ID,
					Reason:        reason,
				}})
			default:
				log.Printf("[reconcile] failed intent %s on %s payment, skipping", pi.ID, p.Type)
			}
			return nil
		}

		// No ledger row: an authorization that failed before a hold was
		// recorded. The intent's purpose metadata tells the two apart.
		resID := pi.Metadata[processor.MetaReservationID]
		if resID == "" || pi.Metadata[processor.MetaPurpose] != processor.PurposeDeposit {
			log.Printf("[reconcile] failed intent %s has no ledger row, skipping", pi.ID)
			return nil
		}
		res, err := s.validateReservation(ctx, tx, resID, evt.Account)
		if err != nil {
			return err
		}
		if !res.DepositStatus.CanTransitionTo(domain.DepositFailed) {
			return nil // already terminal, duplicate delivery
		}
		if err := tx.SetDepositStatus(ctx, res, domain.DepositFailed, nil, nil); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, res.ID, domain.DepositFailedDetails{
			IntentID: pi.ID,
			Error:    reason,
		}, "deposit authorization failed"); err != nil {
			return err
		}
		pending = append(pending, notification{KeyDepositFailed, DepositNotice{
			ReservationID: res.ID,
			IntentID:      pi.ID,
			Reason:        reason,
		}})
		return nil
	})
	if err != nil {
		return ackOnValidation(err, evt)
	}
	s.flush(pending)
	return nil
}

// handleAuthorizationCancelled releases an uncaptured hold: funds return to
// the customer in full, the hold row flips to cancelled and no new payment
// row is written.
func (s *ReconcileSvc) handleAuthorizationCancelled(ctx context.Context, evt processor.InboundEvent) error {
	pi, err := processor.Unmarshal[processor.PaymentIntent](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad intent payload id=%s: %v", evt.ID, err)
		return nil
	}

	var pending []notification
	err = s.repo.WithinTx(ctx, func(tx *repository.LedgerRepo) error {
		p, err := tx.PaymentByIntentID(ctx, pi.ID)
		if err != nil {
			return err
		}
		if p == nil || p.Type != domain.PaymentDepositHold {
			log.Printf("[reconcile] canceled intent %s has no hold row, skipping", pi.ID)
			return nil
		}
		if p.Status == domain.StatusCancelled {
			return nil // duplicate delivery
		}
		res, err := s.validateReservation(ctx, tx, p.ReservationID, evt.Account)
		if err != nil {
			return err
		}
		if !res.DepositStatus.CanTransitionTo(domain.DepositReleased) {
			log.Printf("[reconcile] intent %s: deposit %s cannot release, skipping", pi.ID, res.DepositStatus)
			return nil
		}
		p.Status = domain.StatusCancelled
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		if err := tx.SetDepositStatus(ctx, res, domain.DepositReleased, nil, nil); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, res.ID, domain.DepositReleasedDetails{
			Amount:   p.Amount.StringFixed(2),
			IntentID: pi.ID,
		}, "deposit released"); err != nil {
			return err
		}
		pending = append(pending, notification{KeyDepositReleased, DepositNotice{
			ReservationID: res.ID,
			Amount:        p.Amount.StringFixed(2),
			IntentID:      pi.ID,
		}})
		return nil
	})
	if err != nil {
		return ackOnValidation(err, evt)
	}
	s.flush(pending)
	return nil
}

// handleChargeRefunded flips the matched payment to refunded. The deposit
// state machine has no edge out of captured; a later refund is an
// operator-level correction recorded only on the payment and the trail.
func (s *ReconcileSvc) handleChargeRefunded(ctx context.Context, evt processor.InboundEvent) error {
	ch, err := processor.Unmarshal[processor.Charge](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad charge payload id=%s: %v", evt.ID, err)
		return nil
	}

	var pending []notification
	err = s.repo.WithinTx(ctx, func(tx *repository.LedgerRepo) error {
		p, err := tx.PaymentByChargeID(ctx, ch.ID)
		if err != nil {
			return err
		}
		if p == nil && ch.PaymentIntent != "" {
			if p, err = tx.PaymentByIntentID(ctx, ch.PaymentIntent); err != nil {
				return err
			}
		}
		if p == nil {
			log.Printf("[reconcile] refunded charge %s has no ledger row, skipping", ch.ID)
			return nil
		}
		if p.Status == domain.StatusRefunded {
			return nil // duplicate delivery
		}
		res, err := s.validateReservation(ctx, tx, p.ReservationID, evt.Account)
		if err != nil {
			return err
		}
		refunded := amountFromMinor(ch.AmountRefunded)
		p.Status = domain.StatusRefunded
		if p.ChargeID == nil {
			p.ChargeID = &ch.ID
		}
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		if err := tx.AppendActivity(ctx, res.ID, domain.PaymentRefundedDetails{
			ChargeID:       ch.ID,
			AmountRefunded: refunded.StringFixed(2),
			Currency:       strings.ToUpper(ch.Currency),
		}, "payment refunded"); err != nil {
			return err
		}
		pending = append(pending, notification{KeyPaymentRefunded, PaymentNotice{
			ReservationID: res.ID,
			Amount:        refunded.StringFixed(2),
			Currency:      strings.ToUpper(ch.Currency),
			ChargeID:      ch.ID,
		}})
		return nil
	})
	if err != nil {
		return ackOnValidation(err, evt)
	}
	s.flush(pending)
	return nil
}

// handleSubAccountUpdated tracks the store's processor onboarding state.
// Not reservation-scoped: the event's account must match the object itself.
func (s *ReconcileSvc) handleSubAccountUpdated(ctx context.Context, evt processor.InboundEvent) error {
	acct, err := processor.Unmarshal[processor.SubAccount](evt.Raw)
	if err != nil {
		log.Printf("[reconcile] bad account payload id=%s: %v", evt.ID, err)
		return nil
	}
	if evt.Account != "" && evt.Account != acct.ID {
		log.Printf("[reconcile][SECURITY] account event %s claims %s but carries %s", evt.ID, evt.Account, acct.ID)
		return nil
	}
	store, err := s.repo.StoreBySubAccount(ctx, acct.ID)
	if err != nil {
		return err
	}
	if store == nil {
		log.Printf("[reconcile] account %s has no store, skipping", acct.ID)
		return nil
	}
	store.ChargesEnabled = acct.ChargesEnabled
	store.PayoutsEnabled = acct.PayoutsEnabled
	store.DetailsSubmitted = acct.DetailsSubmitted
	if err := s.repo.SaveStore(ctx, store); err != nil {
		return err
	}
	log.Printf("[reconcile] store %s sub-account updated charges=%t payouts=%t details=%t",
		store.ID, acct.ChargesEnabled, acct.PayoutsEnabled, acct.DetailsSubmitted)
	return nil
}
