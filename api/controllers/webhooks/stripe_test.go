package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeapi "github.com/stripe/stripe-go/v84"
)

const testSigningSecret = "whsec_test"

type fakeWebhookService struct {
	calls int
	err   error
	last  stripeapi.Event
}

func (f *fakeWebhookService) HandleEvent(_ context.Context, event stripeapi.Event) error {
	if f.err != nil {
		return f.err
	}
	f.calls++
	f.last = event
	return nil
}

type fakeSigningClient struct {
	secret string
}

func (f *fakeSigningClient) SigningSecret() string { return f.secret }

func buildSignedEvent(t *testing.T) ([]byte, string) {
	t.Helper()
	intent := map[string]any{
		"id":       "pi_" + uuid.NewString(),
		"amount":   1710,
		"metadata": map[string]string{"order_id": "2025-4821-0601"},
	}
	raw, err := json.Marshal(intent)
	require.NoError(t, err)

	event := stripeapi.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: "payment_intent.succeeded",
		Data: &stripeapi.EventData{Raw: raw},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return payload, signPayload(payload, testSigningSecret, time.Now().Unix())
}

func signPayload(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeWebhookVerifiesAndDispatches(t *testing.T) {
	payload, header := buildSignedEvent(t)
	svc := &fakeWebhookService{}
	handler := StripeWebhook(svc, &fakeSigningClient{secret: testSigningSecret}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, svc.calls)
	assert.Equal(t, "payment_intent.succeeded", string(svc.last.Type))
}

func TestStripeWebhookRejectsInvalidSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t)
	svc := &fakeWebhookService{}
	handler := StripeWebhook(svc, &fakeSigningClient{secret: testSigningSecret}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=invalid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, svc.calls)
}

func TestStripeWebhookRequiresSignatureHeader(t *testing.T) {
	payload, _ := buildSignedEvent(t)
	svc := &fakeWebhookService{}
	handler := StripeWebhook(svc, &fakeSigningClient{secret: testSigningSecret}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}
