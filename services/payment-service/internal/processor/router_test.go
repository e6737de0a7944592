package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullTable(h HandlerFunc) map[string]HandlerFunc {
	m := make(map[string]HandlerFunc, len(RequiredKinds))
	for _, k := range RequiredKinds {
		m[k] = h
	}
	return m
}

func TestNewRouterRejectsMissingKind(t *testing.T) {
	table := fullTable(func(context.Context, InboundEvent) error { return nil })
	delete(table, KindChargeRefunded)

	_, err := NewRouter(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KindChargeRefunded)
}

func TestNewRouterRejectsNilHandler(t *testing.T) {
	table := fullTable(func(context.Context, InboundEvent) error { return nil })
	table[KindIntentFailed] = nil

	_, err := NewRouter(table)
	require.Error(t, err)
}

func TestDispatchRoutesByKind(t *testing.T) {
	var got string
	table := fullTable(func(_ context.Context, evt InboundEvent) error {
		got = evt.Kind
		return nil
	})
	r, err := NewRouter(table)
	require.NoError(t, err)

	require.NoError(t, r.Dispatch(context.Background(), InboundEvent{ID: "evt_1", Kind: KindHoldCapturable}))
	assert.Equal(t, KindHoldCapturable, got)
}

func TestDispatchUnknownKindIsAcked(t *testing.T) {
	called := false
	table := fullTable(func(context.Context, InboundEvent) error {
		called = true
		return nil
	})
	r, err := NewRouter(table)
	require.NoError(t, err)

	// processors add kinds over time; unknown must never be an error
	err = r.Dispatch(context.Background(), InboundEvent{ID: "evt_2", Kind: "invoice.finalized"})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDispatchPropagatesHandlerError(t *testing.T) {
	boom := errors.New("storage down")
	table := fullTable(func(context.Context, InboundEvent) error { return boom })
	r, err := NewRouter(table)
	require.NoError(t, err)

	err = r.Dispatch(context.Background(), InboundEvent{Kind: KindCheckoutCompleted})
	assert.ErrorIs(t, err, boom)
}
