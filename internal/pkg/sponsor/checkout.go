package sponsor

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/problemdock/ProblemDock/internal/pkg/env"
)

// PaymentProvider is the provider tag recorded on webhook events.
const PaymentProvider = "dockpay"

// CheckoutClient talks to the hosted payment provider that collects the
// fixed slot price and confirms via webhook.
type CheckoutClient struct {
	APIBaseURL string
	SecretKey  string
	SuccessURL string
	CancelURL  string

	HTTPClient *http.Client
}

// CheckoutSession references a hosted payment page for one pending slot.
type CheckoutSession struct {
	Reference string `json:"id"`
	URL       string `json:"url"`
}

// WebhookEvent is the parsed payload of a payment confirmation delivery.
type WebhookEvent struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	SlotID     string `json:"slot_id"`
	PaymentRef string `json:"payment_ref"`
}

func NewCheckoutClientFromEnv() *CheckoutClient {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	successURL := strings.TrimSpace(env.GetEnv("SPONSOR_CHECKOUT_SUCCESS_URL", ""))
	if successURL == "" && base != "" {
		successURL = base + "/sponsors/thanks"
	}
	cancelURL := strings.TrimSpace(env.GetEnv("SPONSOR_CHECKOUT_CANCEL_URL", ""))
	if cancelURL == "" && base != "" {
		cancelURL = base + "/sponsors"
	}

	return &CheckoutClient{
		APIBaseURL: strings.TrimRight(strings.TrimSpace(env.GetEnv("SPONSOR_PAYMENT_API_URL", "")), "/"),
		SecretKey:  strings.TrimSpace(env.GetEnv("SPONSOR_PAYMENT_SECRET_KEY", "")),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateSession asks the provider for a hosted checkout page covering the
// slot's fixed price.
func (c *CheckoutClient) CreateSession(ctx context.Context, slotID string, amountCents int64, month string) (*CheckoutSession, error) {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return nil, errors.New("SPONSOR_PAYMENT_API_URL is not configured")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("SPONSOR_PAYMENT_SECRET_KEY is not configured")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"reference":    slotID,
		"amount_cents": amountCents,
		"currency":     "eur",
		"description":  fmt.Sprintf("Problem Dock sponsor slot %s", month),
		"success_url":  c.SuccessURL,
		"cancel_url":   c.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/v1/checkout/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("checkout session request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("invalid checkout session response: %w", err)
	}
	if session.Reference == "" {
		return nil, errors.New("checkout session response is missing an id")
	}
	return &session, nil
}

// VerifyWebhookSignature checks the provider's HMAC-SHA256 signature over
// the raw webhook body.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// ParseWebhookEvent decodes a payment confirmation payload.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if strings.TrimSpace(event.SlotID) == "" {
		return nil, errors.New("webhook payload is missing slot_id")
	}
	return &event, nil
}
