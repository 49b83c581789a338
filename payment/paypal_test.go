package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayPalServer(t *testing.T, handler http.HandlerFunc) *PayPal {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &PayPal{
		BaseURL:   srv.URL,
		ClientID:  "client",
		AppSecret: "secret",
		Client:    srv.Client(),
	}
}

func TestPayPalCreateIntent(t *testing.T) {
	var sawToken, sawCreate bool
	p := newPayPalServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			sawToken = true
			// client-credentials grant uses basic auth
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client", user)
			assert.Equal(t, "secret", pass)
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
		case "/v2/checkout/orders":
			sawCreate = true
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

			var payload struct {
				Intent        string `json:"intent"`
				PurchaseUnits []struct {
					ReferenceID string `json:"reference_id"`
					Amount      struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"purchase_units"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "CAPTURE", payload.Intent)
			require.Len(t, payload.PurchaseUnits, 1)
			assert.Equal(t, "order-ref-1", payload.PurchaseUnits[0].ReferenceID)
			assert.Equal(t, "68.65", payload.PurchaseUnits[0].Amount.Value)

			json.NewEncoder(w).Encode(map[string]string{"id": "PAYPAL-ORDER-1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	id, err := p.CreateIntent("order-ref-1", 68.65)
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL-ORDER-1", id)
	assert.True(t, sawToken)
	assert.True(t, sawCreate)
}

func TestPayPalCaptureIntent(t *testing.T) {
	p := newPayPalServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
		case "/v2/checkout/orders/PAYPAL-ORDER-1/capture":
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{
				"id": "PAYPAL-ORDER-1",
				"status": "COMPLETED",
				"payer": {"email_address": "buyer@example.com"},
				"purchase_units": [{
					"reference_id": "order-ref-1",
					"payments": {"captures": [{"amount": {"value": "68.65"}}]}
				}]
			}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	captured, err := p.CaptureIntent("PAYPAL-ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL-ORDER-1", captured.ID)
	assert.Equal(t, PayPalStatusCompleted, captured.Status)
	assert.True(t, captured.Completed)
	assert.Equal(t, "buyer@example.com", captured.PayerEmail)
	assert.Equal(t, "order-ref-1", captured.OrderRef)
	assert.InDelta(t, 68.65, captured.Amount, 1e-9)
}

func TestPayPalCaptureIntentNotCompleted(t *testing.T) {
	p := newPayPalServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
		default:
			w.Write([]byte(`{"id": "PAYPAL-ORDER-1", "status": "PENDING"}`))
		}
	})

	captured, err := p.CaptureIntent("PAYPAL-ORDER-1")
	require.NoError(t, err)
	assert.False(t, captured.Completed)
}

func TestPayPalAPIError(t *testing.T) {
	p := newPayPalServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid_client"}`))
	})

	_, err := p.CreateIntent("order-ref-1", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewPayPalFromEnvMissingConfig(t *testing.T) {
	t.Setenv("PAYPAL_API_URL", "")
	t.Setenv("PAYPAL_CLIENT_ID", "")
	t.Setenv("PAYPAL_APP_SECRET", "")

	_, err := NewPayPalFromEnv()
	assert.Error(t, err)
}
