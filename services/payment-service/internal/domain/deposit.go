package domain

type DepositStatus string

const (
	DepositNone       DepositStatus = "none"
	DepositCardSaved  DepositStatus = "card_saved"
	DepositPending    DepositStatus = "pending"
	DepositAuthorized DepositStatus = "authorized"
	DepositCaptured   DepositStatus = "captured"
	DepositReleased   DepositStatus = "released"
	DepositFailed     DepositStatus = "failed"
)

// Legal deposit transitions. none is terminal for zero-deposit reservations;
// it only advances at rental completion when a deposit amount exists.
var depositTransitions = map[DepositStatus][]DepositStatus{
	DepositNone:       {DepositCardSaved, DepositPending},
	DepositCardSaved:  {DepositAuthorized, DepositFailed},
	DepositPending:    {DepositAuthorized, DepositFailed},
	DepositAuthorized: {DepositCaptured, DepositReleased, DepositFailed},
}

func (s DepositStatus) CanTransitionTo(next DepositStatus) bool {
	for _, t := range depositTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s DepositStatus) Terminal() bool {
	return len(depositTransitions[s]) == 0
}
