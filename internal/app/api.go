package app

import (
	"time"

	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/shopspring/decimal"
)

// Response shapes for the hand-written HTTP surface.

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type WebhookAckResponse struct {
	Received bool `json:"received"`
}

type CreatePaymentRequest struct {
	Id          string          `json:"id" validate:"required,payment_id"`
	BookingId   string          `json:"bookingId" validate:"required"`
	Value       decimal.Decimal `json:"value"`
	BillingType string          `json:"billingType"`
}

type PaymentStatusResponse struct {
	Id          string               `json:"id"`
	Status      domain.PaymentStatus `json:"status"`
	Value       *decimal.Decimal     `json:"value,omitempty"`
	BillingType string               `json:"billingType,omitempty"`
	// Local reports whether the answer came from the payment record store
	// or fell back to the gateway's status-query API.
	Local bool `json:"local"`
}
