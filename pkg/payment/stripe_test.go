package payment_test

import (
	"context"
	gohttp "net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metrolabs/metro/pkg/http"
	"github.com/metrolabs/metro/pkg/payment"
	"github.com/metrolabs/metro/pkg/testkit"
)

const intentsURL = "https://api.stripe.com/v1/payment_intents"

func TestCreateIntentRoundsToMinorUnits(t *testing.T) {
	mt := testkit.NewMockTransport().
		Stub(gohttp.MethodPost, intentsURL, 200,
			`{"id":"pi_1","client_secret":"pi_1_secret_x","amount":1999,"currency":"usd","status":"requires_payment_method"}`)
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	c := payment.NewClient("sk_test_123", "")
	intent, err := c.CreateIntent(context.Background(), 19.99, "usd", map[string]string{"order_id": "7"})
	require.NoError(t, err)

	assert.Equal(t, "pi_1_secret_x", intent.ClientSecret)

	req, body, ok := mt.LastRequest(intentsURL)
	require.True(t, ok)
	assert.Equal(t, "Bearer sk_test_123", req.Header.Get("Authorization"))
	assert.NotEmpty(t, req.Header.Get("Idempotency-Key"))
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

	form, err := url.ParseQuery(body)
	require.NoError(t, err)
	assert.Equal(t, "1999", form.Get("amount"))
	assert.Equal(t, "usd", form.Get("currency"))
	assert.Equal(t, "7", form.Get("metadata[order_id]"))

	testkit.AssertMocksAllCalled(t, mt)
}

func TestCreateIntentRejectsNonPositiveAmount(t *testing.T) {
	c := payment.NewClient("sk_test_123", "")

	_, err := c.CreateIntent(context.Background(), 0, "usd", nil)
	assert.Error(t, err)

	_, err = c.CreateIntent(context.Background(), -5, "usd", nil)
	assert.Error(t, err)
}

func TestCreateIntentSurfacesStripeErrorMessage(t *testing.T) {
	mt := testkit.NewMockTransport().
		Stub(gohttp.MethodPost, intentsURL, 402,
			`{"error":{"message":"Your card was declined."}}`)
	http.DefaultClient.Transport = mt
	defer http.ResetTransport()

	c := payment.NewClient("sk_test_123", "")
	_, err := c.CreateIntent(context.Background(), 10, "usd", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Your card was declined.")
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	secret := "whsec_test"

	header := payment.SignPayload(payload, secret, time.Now())
	assert.NoError(t, payment.VerifySignature(payload, header, secret, 5*time.Minute))

	// tampered payload
	assert.ErrorIs(t,
		payment.VerifySignature([]byte(`{"id":"evt_2"}`), header, secret, 5*time.Minute),
		payment.ErrBadSignature)

	// wrong secret
	assert.ErrorIs(t,
		payment.VerifySignature(payload, header, "whsec_other", 5*time.Minute),
		payment.ErrBadSignature)

	// stale timestamp outside tolerance
	stale := payment.SignPayload(payload, secret, time.Now().Add(-time.Hour))
	assert.ErrorIs(t,
		payment.VerifySignature(payload, stale, secret, 5*time.Minute),
		payment.ErrBadSignature)

	// malformed header
	assert.ErrorIs(t,
		payment.VerifySignature(payload, "v1=deadbeef", secret, 5*time.Minute),
		payment.ErrBadSignature)
}

func TestParseEvent(t *testing.T) {
	ev, err := payment.ParseEvent([]byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","amount":1999}}}`))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.succeeded", ev.Type)
	assert.JSONEq(t, `{"id":"pi_1","amount":1999}`, string(ev.Data.Object))
}
