package app

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/lfmartins/legalflow/internal/gateway"
)

// Header names the gateway has used for the shared secret across its
// webhook versions.
var webhookTokenHeaders = []string{
	"access-token",
	"asaas-access-token",
	"webhook-access-token",
}

const webhookDedupeTTL = 24 * time.Hour

// GatewayWebhookHandler ingests payment gateway events. Reconciliation runs
// synchronously and the response code is the failure-recovery mechanism: the
// gateway redelivers on anything but 200, so there is no queue-and-ack-early.
func (app *application) GatewayWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if !app.validWebhookToken(r) {
		app.unauthorizedResponse(w, r)
		return
	}

	var event gateway.WebhookEvent
	err := app.readJSON(w, r, &event)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(event)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	logger := app.logger.With("event", event.Event, "payment_id", event.Payment.ID)

	if app.duplicateDelivery(r, event, logger) {
		logger.Info("skipping duplicate webhook delivery", "event_id", event.ID)
		app.writeJSON(w, http.StatusOK, WebhookAckResponse{Received: true}, nil)
		return
	}

	err = app.reconciler.Reconcile(r.Context(), event)
	if err != nil {
		// Non-200 so the gateway retries the delivery.
		logger.Error("reconciliation failed", "error", err)
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, WebhookAckResponse{Received: true}, nil)
}

func (app *application) validWebhookToken(r *http.Request) bool {
	expected := []byte(app.config.gateway.webhookToken)
	if len(expected) == 0 {
		return false
	}

	for _, header := range webhookTokenHeaders {
		token := r.Header.Get(header)
		if token == "" {
			continue
		}

		return subtle.ConstantTimeCompare([]byte(token), expected) == 1
	}

	return false
}

// duplicateDelivery absorbs redeliveries that carry an event id before they
// reach the engine. Best-effort only: a redis failure falls through, and the
// engine's idempotency check remains the authoritative guard.
func (app *application) duplicateDelivery(r *http.Request, event gateway.WebhookEvent, logger *slog.Logger) bool {
	if event.ID == "" {
		return false
	}

	fresh, err := app.redis.SetNX(r.Context(), "webhook:event:"+event.ID, 1, webhookDedupeTTL).Result()
	if err != nil {
		logger.Warn("webhook dedupe check failed", "error", err)
		return false
	}

	return !fresh
}
