package testutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/javajoker/blob-shop/internal/models"
)

// SignPayload builds a Stripe-Signature header for payload.
func SignPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// CompletedSession describes the checkout session inside a fake event.
type CompletedSession struct {
	EventID     string
	SessionID   string
	Email       string
	Name        string
	AmountTotal int64
	Currency    string // defaults to usd
	Cart        string
}

// CompletedSessionEvent renders a checkout.session.completed event body.
func CompletedSessionEvent(t testing.TB, s CompletedSession) []byte {
	t.Helper()

	currency := s.Currency
	if currency == "" {
		currency = "usd"
	}

	event := map[string]interface{}{
		"id":          s.EventID,
		"object":      "event",
		"type":        "checkout.session.completed",
		"api_version": "2022-11-15",
		"created":     time.Now().Unix(),
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             s.SessionID,
				"object":         "checkout.session",
				"amount_total":   s.AmountTotal,
				"currency":       currency,
				"mode":           "payment",
				"payment_status": "paid",
				"status":         "complete",
				"customer_details": map[string]interface{}{
					"email": s.Email,
					"name":  s.Name,
				},
				"shipping_details": map[string]interface{}{
					"name": s.Name,
					"address": map[string]interface{}{
						"line1":       "1 Ocean Drive",
						"city":        "Miami",
						"state":       "FL",
						"postal_code": "33139",
						"country":     "US",
					},
				},
				"metadata": map[string]string{
					"cart": s.Cart,
				},
			},
		},
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

// TypedEvent renders an event body of an arbitrary type.
func TypedEvent(t testing.TB, eventType string) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]interface{}{
		"id":     "evt_other",
		"object": "event",
		"type":   eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{"id": "pi_123", "object": "payment_intent"},
		},
	})
	require.NoError(t, err)
	return payload
}

// CartJSON encodes cart lines in the v1 metadata envelope.
func CartJSON(t testing.TB, lines ...models.CartLine) string {
	t.Helper()

	b, err := json.Marshal(map[string]interface{}{"v": 1, "items": lines})
	require.NoError(t, err)
	return string(b)
}
