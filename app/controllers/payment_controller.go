package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/metrolabs/metro/app/services"
	"github.com/metrolabs/metro/pkg/bind"
	"github.com/metrolabs/metro/pkg/logger"
	"github.com/metrolabs/metro/pkg/metrics"
	"github.com/metrolabs/metro/pkg/payment"
	"github.com/metrolabs/metro/pkg/response"
)

// webhookTolerance bounds how stale a signed webhook timestamp may be.
const webhookTolerance = 5 * time.Minute

// PaymentController is the thin edge in front of Stripe: it creates
// payment intents and consumes webhook confirmations. All money math
// stays on Stripe's side.
type PaymentController struct {
	stripe         *payment.Client
	orders         *services.OrderService
	publishableKey string
	signingSecret  string
}

func NewPaymentController(stripe *payment.Client, orders *services.OrderService, publishableKey, signingSecret string) *PaymentController {
	return &PaymentController{
		stripe:         stripe,
		orders:         orders,
		publishableKey: publishableKey,
		signingSecret:  signingSecret,
	}
}

// Config handles GET /config. The publishable key is safe
// to expose; the client needs it to initialise Stripe.js.
func (c *PaymentController) Config(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{
		"publishableKey": c.publishableKey,
	})
}

// CreateIntent handles POST /create-payment-intent.
// When an orderId is supplied it rides along as intent metadata so the
// webhook can mark that order paid.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount   float64 `json:"amount" validate:"required,gt=0"`
		Currency string  `json:"currency"`
		OrderID  int     `json:"orderId" validate:"omitempty,gt=0"`
	}

	errs, err := bind.JSON(r, &body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if bind.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	var metadata map[string]string
	if body.OrderID > 0 {
		if _, err := c.orders.Get(r.Context(), body.OrderID); err != nil {
			fail(w, r, err)
			return
		}
		metadata = map[string]string{"order_id": strconv.Itoa(body.OrderID)}
	}

	intent, err := c.stripe.CreateIntent(r.Context(), body.Amount, body.Currency, metadata)
	if err != nil {
		metrics.PaymentIntent("error")
		logger.WithCtx(r.Context()).Error("payment intent failed", "error", err)
		response.Error(w, http.StatusBadGateway, "Payment provider unavailable")
		return
	}

	metrics.PaymentIntent("created")
	response.Success(w, map[string]string{
		"clientSecret": intent.ClientSecret,
	})
}

// Webhook handles POST /webhook. The raw body is verified
// against the Stripe-Signature header before anything is parsed.
// Events other than payment_intent.succeeded are acknowledged and
// dropped so Stripe stops retrying them.
func (c *PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Unreadable payload")
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if err := payment.VerifySignature(body, sig, c.signingSecret, webhookTolerance); err != nil {
		logger.WithCtx(r.Context()).Warn("webhook signature rejected")
		response.Error(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	ev, err := payment.ParseEvent(body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Malformed event")
		return
	}

	if ev.Type != "payment_intent.succeeded" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var object struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(ev.Data.Object, &object); err != nil {
		response.Error(w, http.StatusBadRequest, "Malformed event object")
		return
	}

	log := logger.WithCtx(r.Context())
	if raw, ok := object.Metadata["order_id"]; ok {
		orderID, err := strconv.Atoi(raw)
		if err == nil && orderID > 0 {
			if _, err := c.orders.MarkPaid(r.Context(), orderID); err != nil {
				// Acknowledge anyway: Stripe retries are not going to
				// make an unknown order appear.
				log.Error("webhook could not mark order paid",
					"order_id", orderID, "intent", object.ID, "error", err)
			}
		}
	}

	log.Info("payment confirmed", "intent", object.ID)
	w.WriteHeader(http.StatusOK)
}
