// Package gateway holds the PIX payment gateway integration: the webhook
// payload shape it delivers and the small REST client for its status-query
// API. The gateway is consumed only at those two surfaces.
package gateway

import (
	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/shopspring/decimal"
)

// WebhookEvent is the decoded webhook delivery. State decisions use Event
// and Payment.ID; the rest of the payload is informational.
type WebhookEvent struct {
	// ID is the gateway's event identifier. Older gateway versions omit it.
	ID      string              `json:"id"`
	Event   string              `json:"event" validate:"required"`
	Payment WebhookEventPayment `json:"payment" validate:"required"`
}

type WebhookEventPayment struct {
	ID          string          `json:"id" validate:"required"`
	Status      string          `json:"status"`
	Value       decimal.Decimal `json:"value"`
	BillingType string          `json:"billingType"`
}

// eventTransitions is the fixed table mapping gateway event types to target
// statuses. Event types outside the table are intentionally unhandled.
var eventTransitions = map[string]domain.PaymentStatus{
	"PAYMENT_RECEIVED":             domain.PaymentStatusConfirmed,
	"PAYMENT_CONFIRMED":            domain.PaymentStatusConfirmed,
	"PAYMENT_OVERDUE":              domain.PaymentStatusOverdue,
	"PAYMENT_DELETED":              domain.PaymentStatusCancelled,
	"PAYMENT_EXPIRED":              domain.PaymentStatusExpired,
	"PAYMENT_REFUNDED":             domain.PaymentStatusRefunded,
	"PAYMENT_CHARGEBACK_REQUESTED": domain.PaymentStatusChargeback,
}

// TargetStatus resolves an event type to the status it maps to.
func TargetStatus(eventType string) (domain.PaymentStatus, bool) {
	status, ok := eventTransitions[eventType]
	return status, ok
}
