package worker

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Synapsr/Louez-sub002/services/notification-service/internal/events"
)

type recordingNotifier struct {
	subjects []string
}

func (r *recordingNotifier) Notify(subject, _ string) error {
	r.subjects = append(r.subjects, subject)
	return nil
}

func delivery(t *testing.T, key string, v any) amqp.Delivery {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return amqp.Delivery{RoutingKey: key, Body: b}
}

func TestHandleDeliveryRoutesKnownKeys(t *testing.T) {
	n := &recordingNotifier{}
	w := New(nil, n)

	cases := []amqp.Delivery{
		delivery(t, events.RKPaymentReceived, events.PaymentEvent{ReservationID: "r1", Amount: "100.00", Currency: "eur"}),
		delivery(t, events.RKReservationConfirmed, events.PaymentEvent{ReservationID: "r1"}),
		delivery(t, events.RKDepositCaptured, events.DepositEvent{ReservationID: "r1", Amount: "200.00", CapturedAmount: "75.00"}),
		delivery(t, events.RKDepositFailed, events.DepositEvent{ReservationID: "r1", Reason: "declined"}),
	}
	for _, d := range cases {
		require.NoError(t, w.handleDelivery(d))
	}
	assert.Len(t, n.subjects, len(cases))
}

func TestHandleDeliveryUnknownKeyAccepted(t *testing.T) {
	n := &recordingNotifier{}
	w := New(nil, n)

	require.NoError(t, w.handleDelivery(amqp.Delivery{RoutingKey: "court.created", Body: []byte(`{}`)}))
	assert.Empty(t, n.subjects)
}

func TestHandleDeliveryBadPayload(t *testing.T) {
	n := &recordingNotifier{}
	w := New(nil, n)

	err := w.handleDelivery(amqp.Delivery{RoutingKey: events.RKPaymentReceived, Body: []byte(`{not json`)})
	assert.Error(t, err)
}
