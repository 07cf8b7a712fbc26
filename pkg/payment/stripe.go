// Package payment is a thin Stripe adapter.
//
// It speaks the two pieces of the Stripe API the checkout flow needs,
// creating payment intents and verifying webhook signatures, over the
// shared fluent HTTP client. Amounts cross the wire in the smallest
// currency unit, as Stripe requires.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/metrolabs/metro/pkg/http"
)

// DefaultAPIURL is the production Stripe endpoint.
const DefaultAPIURL = "https://api.stripe.com"

// ErrBadSignature is returned when a webhook payload fails verification.
var ErrBadSignature = errors.New("payment: webhook signature mismatch")

// Intent is the subset of a Stripe PaymentIntent the API returns to clients.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Event is a decoded webhook event.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Client calls the Stripe REST API with a secret key.
type Client struct {
	key    string
	apiURL string
}

// NewClient builds a Stripe client. apiURL is overridable for tests;
// pass "" for the production endpoint.
func NewClient(secretKey, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{key: secretKey, apiURL: strings.TrimRight(apiURL, "/")}
}

// CreateIntent registers a payment intent for amount in the given
// currency. The amount is a major-unit value (19.99 dollars) and is
// rounded to the nearest minor unit before hitting the API. Metadata
// keys round-trip through Stripe and come back on webhook events, so
// the order id travels there.
//
// A fresh idempotency key is attached so a network-level retry cannot
// double-charge.
func (c *Client) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment: amount must be positive, got %v", amount)
	}
	if currency == "" {
		currency = "usd"
	}

	minor := int64(math.Round(amount * 100))

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minor, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	resp, err := http.Post(c.apiURL+"/v1/payment_intents").
		WithContext(ctx).
		Bearer(c.key).
		Header("Idempotency-Key", uuid.NewString()).
		Body(form).
		Timeout(15 * time.Second).
		Retry(2, time.Second).
		Send()
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, stripeError(resp.Raw, err)
	}

	var intent Intent
	if err := resp.JSON(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// stripeError surfaces the message Stripe embeds in error bodies.
func stripeError(raw []byte, fallback error) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		return fmt.Errorf("payment: stripe: %s", body.Error.Message)
	}
	return fallback
}

// VerifySignature checks a Stripe-Signature header against the raw
// webhook payload. The header carries a timestamp and one or more v1
// HMAC-SHA256 signatures over "<timestamp>.<payload>". Events older
// than tolerance are rejected to blunt replay.
func VerifySignature(payload []byte, sigHeader, signingSecret string, tolerance time.Duration) error {
	var ts string
	var sigs []string

	for _, part := range strings.Split(sigHeader, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts = value
		case "v1":
			sigs = append(sigs, value)
		}
	}

	if ts == "" || len(sigs) == 0 {
		return ErrBadSignature
	}

	epoch, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if tolerance > 0 {
		age := time.Since(time.Unix(epoch, 0))
		if age > tolerance || age < -tolerance {
			return ErrBadSignature
		}
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrBadSignature
}

// SignPayload produces a Stripe-Signature header value for payload at
// the given time. Used by tests and the local webhook simulator.
func SignPayload(payload []byte, signingSecret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent decodes a verified webhook payload.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("payment: decode event: %w", err)
	}
	return &ev, nil
}
