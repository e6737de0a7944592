// Package notifier decouples admin/customer notifications from the
// financial transaction: dispatch happens after the ledger commit, is never
// awaited, and failures terminate in a log line.
package notifier

import (
	"context"
	"log"
	"time"
)

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type Dispatcher struct {
	pub     Publisher
	timeout time.Duration
}

func New(pub Publisher) *Dispatcher {
	return &Dispatcher{pub: pub, timeout: 5 * time.Second}
}

// Dispatch publishes on a fresh goroutine and drops errors. Notifications
// are not financially authoritative, so a lost one must never roll back or
// block committed ledger state.
func (d *Dispatcher) Dispatch(event string, payload any) {
	if d == nil || d.pub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.pub.PublishJSON(ctx, event, payload); err != nil {
			log.Printf("[notify-dispatch] publish %s error: %v", event, err)
		}
	}()
}
