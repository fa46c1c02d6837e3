package sponsor

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"slot_id":"abc","payment_ref":"pay_1"}`)
	secret := "whsec_test"

	assert.True(t, VerifyWebhookSignature(body, signBody(body, secret), secret))
	// Uppercase hex and surrounding whitespace are accepted.
	assert.True(t, VerifyWebhookSignature(body, "  "+strings.ToUpper(signBody(body, secret))+"  ", secret))

	assert.False(t, VerifyWebhookSignature(body, signBody(body, "wrong"), secret))
	assert.False(t, VerifyWebhookSignature([]byte("tampered"), signBody(body, secret), secret))
	assert.False(t, VerifyWebhookSignature(body, "", secret))
	assert.False(t, VerifyWebhookSignature(body, signBody(body, secret), ""))
	assert.False(t, VerifyWebhookSignature(body, "not-hex!", secret))
}

func TestParseWebhookEvent(t *testing.T) {
	event, err := ParseWebhookEvent([]byte(`{"event_id":"evt_1","event_type":"checkout.completed","slot_id":"abc","payment_ref":"pay_1"}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.EventID)
	assert.Equal(t, "abc", event.SlotID)
	assert.Equal(t, "pay_1", event.PaymentRef)

	_, err = ParseWebhookEvent([]byte(`{"event_id":"evt_2"}`))
	require.Error(t, err)

	_, err = ParseWebhookEvent([]byte(`{not json`))
	require.Error(t, err)
}

func TestCreateSession(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_123","url":"https://pay.example.com/cs_123"}`))
	}))
	defer srv.Close()

	client := &CheckoutClient{
		APIBaseURL: srv.URL,
		SecretKey:  "sk_test",
		SuccessURL: "https://dock.example.com/sponsors/thanks",
		CancelURL:  "https://dock.example.com/sponsors",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	session, err := client.CreateSession(context.Background(), "slot-uuid", 4900, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.Reference)
	assert.Equal(t, "https://pay.example.com/cs_123", session.URL)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "slot-uuid", gotPayload["reference"])
	assert.Equal(t, float64(4900), gotPayload["amount_cents"])
}

func TestCreateSessionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"card_declined"}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := &CheckoutClient{
		APIBaseURL: srv.URL,
		SecretKey:  "sk_test",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	_, err := client.CreateSession(context.Background(), "slot-uuid", 4900, "2026-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 402")

	unconfigured := &CheckoutClient{HTTPClient: http.DefaultClient}
	_, err = unconfigured.CreateSession(context.Background(), "slot-uuid", 4900, "2026-10")
	require.Error(t, err)
}
