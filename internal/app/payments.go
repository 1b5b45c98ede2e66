package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lfmartins/legalflow/internal/domain"
)

// CreatePaymentHandler registers the payment record for a booking's charge.
// The booking flow calls this right after creating the charge at the gateway;
// the webhook pipeline reconciles against the row it inserts.
func (app *application) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	payment := &domain.Payment{
		ID:          req.Id,
		BookingID:   req.BookingId,
		Status:      domain.PaymentStatusPending,
		Amount:      req.Value,
		BillingType: req.BillingType,
	}

	err = app.paymentRepo.Create(r.Context(), payment)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentAlreadyExists) {
			app.conflictResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.Info("payment record created",
		"payment_id", payment.ID, "booking_id", payment.BookingID)

	resp := PaymentStatusResponse{
		Id:          payment.ID,
		Status:      payment.Status,
		Value:       &payment.Amount,
		BillingType: payment.BillingType,
		Local:       true,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// PaymentStatusHandler answers the one-shot status poll. The local record is
// authoritative; when it does not exist yet the gateway's status-query API
// is consulted so the client is not left guessing during the creation race.
func (app *application) PaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentId")

	err := app.validator.Var(paymentID, "required,payment_id")
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	payment, err := app.paymentRepo.GetById(r.Context(), paymentID)
	if err == nil {
		resp := PaymentStatusResponse{
			Id:          payment.ID,
			Status:      payment.Status,
			Value:       &payment.Amount,
			BillingType: payment.BillingType,
			Local:       true,
		}

		err = app.writeJSON(w, http.StatusOK, resp, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if !errors.Is(err, domain.ErrRecordNotFound) {
		app.serverErrorResponse(w, r, err)
		return
	}

	result, err := app.gatewayClient.GetPayment(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := PaymentStatusResponse{
		Id:          result.ID,
		Status:      gatewayStatus(result.Status),
		Value:       &result.Value,
		BillingType: result.BillingType,
		Local:       false,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// gatewayStatus folds the gateway's wider status vocabulary onto the local
// lifecycle for fallback responses.
func gatewayStatus(status string) domain.PaymentStatus {
	switch status {
	case "RECEIVED", "CONFIRMED", "RECEIVED_IN_CASH":
		return domain.PaymentStatusConfirmed
	case "OVERDUE":
		return domain.PaymentStatusOverdue
	case "DELETED":
		return domain.PaymentStatusCancelled
	case "REFUNDED":
		return domain.PaymentStatusRefunded
	case "CHARGEBACK_REQUESTED", "CHARGEBACK_DISPUTE":
		return domain.PaymentStatusChargeback
	default:
		return domain.PaymentStatusPending
	}
}
