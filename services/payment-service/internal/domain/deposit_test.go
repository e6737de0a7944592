package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepositTransitions(t *testing.T) {
	cases := []struct {
		from, to DepositStatus
		ok       bool
	}{
		{DepositNone, DepositCardSaved, true},
		{DepositNone, DepositPending, true},
		{DepositNone, DepositAuthorized, false},
		{DepositNone, DepositCaptured, false},
		{DepositCardSaved, DepositAuthorized, true},
		{DepositCardSaved, DepositFailed, true},
		{DepositCardSaved, DepositCaptured, false},
		{DepositPending, DepositAuthorized, true},
		{DepositPending, DepositReleased, false},
		{DepositAuthorized, DepositCaptured, true},
		{DepositAuthorized, DepositReleased, true},
		{DepositAuthorized, DepositFailed, true},
		{DepositAuthorized, DepositPending, false},
		{DepositCaptured, DepositReleased, false},
		{DepositReleased, DepositAuthorized, false},
		{DepositFailed, DepositAuthorized, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestDepositTerminalStates(t *testing.T) {
	assert.True(t, DepositCaptured.Terminal())
	assert.True(t, DepositReleased.Terminal())
	assert.True(t, DepositFailed.Terminal())
}

func TestDepositNonTerminalStates(t *testing.T) {
	assert.False(t, DepositNone.Terminal()) // none still advances at rental completion
	assert.False(t, DepositCardSaved.Terminal())
	assert.False(t, DepositPending.Terminal())
	assert.False(t, DepositAuthorized.Terminal())
}
