package notifier

import (
	"log"
)

// Notifier abstracts the delivery channel (email/SMS/chat later).
type Notifier interface {
	Notify(subject, message string) error
}

// ConsoleNotifier logs to stdout. Enough for the back office's MVP.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(subject, message string) error {
	log.Printf("[notify] %s :: %s\n", subject, message)
	return nil
}
