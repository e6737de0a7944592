package worker

import (
	"context"
	"fmt"
	"log"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Synapsr/Louez-sub002/pkg/mq"
	"github.com/Synapsr/Louez-sub002/services/notification-service/internal/events"
	"github.com/Synapsr/Louez-sub002/services/notification-service/internal/notifier"
)

type Worker struct {
	cons     *mq.Consumer
	notifier notifier.Notifier
}

func New(cons *mq.Consumer, n notifier.Notifier) *Worker {
	return &Worker{cons: cons, notifier: n}
}

func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.cons.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.handleDelivery(d); err != nil {
				log.Printf("[notify] handle error key=%s err=%v -> Nack&requeue", d.RoutingKey, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) handleDelivery(d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKPaymentReceived:
		ev, err := events.MustUnmarshal[events.PaymentEvent](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("💰 Payment Received",
			fmt.Sprintf("Reservation %s paid %s %s.", ev.ReservationID, ev.Amount, strings.ToUpper(ev.Currency)))

	case events.RKReservationConfirmed:
		ev, err := events.MustUnmarshal[events.PaymentEvent](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("✅ Reservation Confirmed",
			fmt.Sprintf("Reservation %s has been confirmed.", ev.ReservationID))

	case events.RKPaymentFailed:
		ev, err := events.MustUnmarshal[events.PaymentEvent](d.Body)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Payment failed for reservation %s.", ev.ReservationID)
		if ev.Reason != "" {
			msg = fmt.Sprintf("%s Reason: %s", msg, ev.Reason)
		}
		return w.notifier.Notify("⚠️ Payment Failed", msg)

	case events.RKPaymentExpired:
		ev, err := events.MustUnmarshal[events.PaymentEvent](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("⌛ Checkout Expired",
			fmt.Sprintf("Checkout for reservation %s expired before payment.", ev.ReservationID))

	case events.RKPaymentRefunded:
		ev, err := events.MustUnmarshal[events.PaymentEvent](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("↩️ Payment Refunded",
			fmt.Sprintf("Reservation %s refunded %s %s.", ev.ReservationID, ev.Amount, strings.ToUpper(ev.Currency)))

	case events.RKDepositAuthorized:
		ev, err := events.MustUnmarshal[events.DepositEvent](d.Body)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Deposit hold of %s placed for reservation %s.", ev.Amount, ev.ReservationID)
		if ev.ExpiresAt != nil {
			msg = fmt.Sprintf("%s Expires %s.", msg, ev.ExpiresAt.Format("2006-01-02 15:04"))
		}
		return w.notifier.Notify("🔒 Deposit Authorized", msg)

	case events.RKDepositCaptured:
		ev, err := events.MustUnmarshal[events.DepositEvent](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("💳 Deposit Captured",
			fmt.Sprintf("Captured %s of %s deposit for reservation %s.", ev.CapturedAmount, ev.Amount, ev.ReservationID))

	case events.RKDepositReleased:
		ev, err := events.MustUnmarshal[events.DepositEvent](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("🔓 Deposit Released",
			fmt.Sprintf("Deposit hold of %s released for reservation %s.", ev.Amount, ev.ReservationID))

	case events.RKDepositFailed:
		ev, err := events.MustUnmarshal[events.DepositEvent](d.Body)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Deposit failed for reservation %s.", ev.ReservationID)
		if ev.Reason != "" {
			msg = fmt.Sprintf("%s Reason: %s", msg, ev.Reason)
		}
		return w.notifier.Notify("⚠️ Deposit Failed", msg)

	default:
		// unknown key, record and accept
		log.Printf("[notify] skip unknown key=%s", d.RoutingKey)
	}
	return nil
}
