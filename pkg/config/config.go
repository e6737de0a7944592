package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGLedgerDSN string `envconfig:"PG_LEDGER_DSN" required:"true"`

	// Payment processor webhooks (one secret per product surface)
	WebhookHTTPAddr      string `envconfig:"PAYMENT_WEBHOOK_HTTP_ADDR" default:":8081"`
	WebhookSecret        string `envconfig:"PROCESSOR_WEBHOOK_SECRET" required:"true"`
	ConnectWebhookSecret string `envconfig:"PROCESSOR_CONNECT_WEBHOOK_SECRET" required:"true"`

	// RabbitMQ notification side channel
	RabbitURL      string `envconfig:"RABBIT_URL" required:"true"`
	NotifyExchange string `envconfig:"NOTIFY_EXCHANGE" default:"payment.exchange"`
	NotifyQueue    string `envconfig:"NOTIFY_QUEUE" default:"notify.payment.q"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
