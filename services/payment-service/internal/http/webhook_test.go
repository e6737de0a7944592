package httpx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Synapsr/Louez-sub002/services/payment-service/internal/processor"
)

const (
	testSecret        = "whsec_payments_test"
	testConnectSecret = "whsec_connect_test"
)

// signPayload produces the processor's v1 signature header:
// HMAC-SHA256 over "{timestamp}.{payload}", header "t={ts},v1={sig}".
func signPayload(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

type recorded struct {
	evt processor.InboundEvent
}

func newTestServer(t *testing.T, handler processor.HandlerFunc) (*gin.Engine, *recorded) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := &recorded{}
	table := make(map[string]processor.HandlerFunc)
	for _, k := range processor.RequiredKinds {
		table[k] = func(_ context.Context, evt processor.InboundEvent) error {
			rec.evt = evt
			if handler != nil {
				return handler(context.Background(), evt)
			}
			return nil
		}
	}
	router, err := processor.NewRouter(table)
	require.NoError(t, err)

	engine := gin.New()
	NewWebhookServer(router, testSecret, testConnectSecret).Register(engine)
	return engine, rec
}

func postEvent(engine *gin.Engine, path, payload, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	if header != "" {
		req.Header.Set(signatureHeader, header)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestWebhookAcceptsSignedEvent(t *testing.T) {
	engine, rec := newTestServer(t, nil)

	payload := `{"id":"evt_1","type":"checkout.session.completed","account":"acct_1","data":{"object":{"id":"cs_1"}}}`
	header := signPayload([]byte(payload), testSecret, time.Now().Unix())

	w := postEvent(engine, "/webhooks/payments", payload, header)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.Equal(t, "evt_1", rec.evt.ID)
	assert.Equal(t, processor.KindCheckoutCompleted, rec.evt.Kind)
	assert.Equal(t, "acct_1", rec.evt.Account)
	assert.JSONEq(t, `{"id":"cs_1"}`, string(rec.evt.Raw))
}

func TestWebhookRejectsBadSignatureBeforeDispatch(t *testing.T) {
	engine, rec := newTestServer(t, nil)

	payload := `{"id":"evt_2","type":"checkout.session.completed","data":{"object":{}}}`
	header := signPayload([]byte(payload), "whsec_wrong", time.Now().Unix())

	w := postEvent(engine, "/webhooks/payments", payload, header)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, rec.evt.ID, "nothing dispatched on a rejected signature")
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	engine, _ := newTestServer(t, nil)

	payload := `{"id":"evt_3","type":"checkout.session.completed","data":{"object":{}}}`
	w := postEvent(engine, "/webhooks/payments", payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConnectEndpointUsesItsOwnSecret(t *testing.T) {
	engine, rec := newTestServer(t, nil)

	payload := `{"id":"evt_4","type":"account.updated","account":"acct_9","data":{"object":{"id":"acct_9"}}}`

	// platform secret does not sign connect traffic
	w := postEvent(engine, "/webhooks/connect", payload, signPayload([]byte(payload), testSecret, time.Now().Unix()))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postEvent(engine, "/webhooks/connect", payload, signPayload([]byte(payload), testConnectSecret, time.Now().Unix()))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acct_9", rec.evt.Account)
}

func TestWebhookUnknownKindIsAcked(t *testing.T) {
	engine, _ := newTestServer(t, nil)

	payload := `{"id":"evt_5","type":"invoice.finalized","data":{"object":{}}}`
	header := signPayload([]byte(payload), testSecret, time.Now().Unix())

	w := postEvent(engine, "/webhooks/payments", payload, header)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookHandlerErrorTriggersRetry(t *testing.T) {
	engine, _ := newTestServer(t, func(context.Context, processor.InboundEvent) error {
		return errors.New("storage down")
	})

	payload := `{"id":"evt_6","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`
	header := signPayload([]byte(payload), testSecret, time.Now().Unix())

	w := postEvent(engine, "/webhooks/payments", payload, header)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
