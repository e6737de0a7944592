// Package httpx exposes the processor webhook endpoints: one per product
// surface (platform payments vs. sub-account events), each with its own
// signing secret. The signature is verified before any parsing; nothing
// touches the database on a bad signature.
package httpx

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/processor"
)

const maxBodyBytes = 1 << 20 // processor payloads are small; cap reads

const signatureHeader = "Stripe-Signature"

type WebhookServer struct {
	router        *processor.Router
	secret        string
	connectSecret string
}

func NewWebhookServer(router *processor.Router, secret, connectSecret string) *WebhookServer {
	return &WebhookServer{router: router, secret: secret, connectSecret: connectSecret}
}

func (s *WebhookServer) Register(r *gin.Engine) {
	r.POST("/webhooks/payments", s.handle(s.secret))
	r.POST("/webhooks/connect", s.handle(s.connectSecret))
}

// Response contract: 200 {"received":true} on handled events including
// idempotent no-ops so the processor stops retrying; 400 on bad signature
// or body; 500 on internal failure so the processor retries later.
func (s *WebhookServer) handle(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
			return
		}
		evt, err := webhook.ConstructEventWithOptions(body, c.GetHeader(signatureHeader), secret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			log.Printf("[webhook] signature rejected: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}

		in := processor.InboundEvent{
			ID:      evt.ID,
			Kind:    string(evt.Type),
			Account: evt.Account,
			Raw:     evt.Data.Raw,
		}
		if err := s.router.Dispatch(c.Request.Context(), in); err != nil {
			log.Printf("[webhook] handle %s id=%s error: %v", in.Kind, in.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
