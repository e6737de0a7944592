package processor

import (
	"context"
	"fmt"
	"log"
)

type HandlerFunc func(ctx context.Context, evt InboundEvent) error

// RequiredKinds is every event kind the engine must handle. NewRouter
// refuses to start if any of them is missing from the table, so a kind can
// never go unhandled silently.
var RequiredKinds = []string{
	KindCheckoutCompleted,
	KindCheckoutExpired,
	KindHoldCapturable,
	KindAuthorizationCancelled,
	KindIntentSucceeded,
	KindIntentFailed,
	KindChargeRefunded,
	KindSubAccountUpdated,
}

// Router maps event kinds to handlers. It holds no state and performs no
// business logic; each handler is independently idempotent and
// security-checked.
type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter(handlers map[string]HandlerFunc) (*Router, error) {
	for _, kind := range RequiredKinds {
		h, ok := handlers[kind]
		if !ok {
			return nil, fmt.Errorf("router: no handler for %s", kind)
		}
		if h == nil {
			return nil, fmt.Errorf("router: nil handler for %s", kind)
		}
	}
	return &Router{handlers: handlers}, nil
}

// Dispatch hands evt to its handler. Unknown kinds are logged and
// acknowledged, never errors; the processor adds kinds over time.
func (r *Router) Dispatch(ctx context.Context, evt InboundEvent) error {
	h, ok := r.handlers[evt.Kind]
	if !ok {
		log.Printf("[reconcile] skip unknown event kind=%s id=%s", evt.Kind, evt.ID)
		return nil
	}
	return h(ctx, evt)
}
