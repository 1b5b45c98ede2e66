// Package reconciler turns gateway webhook events into idempotent status
// transitions on the local payment record, provisions the meeting resource
// on confirmation, and fans the committed change out to live stream
// subscribers.
package reconciler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/lfmartins/legalflow/internal/gateway"
	"github.com/lfmartins/legalflow/internal/mailer"
)

// Notifier receives every committed status change.
type Notifier interface {
	Notify(paymentID string, status domain.PaymentStatus)
}

// RetryPolicy bounds the record-not-found retry loop. The webhook can race
// ahead of the booking flow writing the record, so the lookup is retried
// before degrading to a best-effort keyed update.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       1500 * time.Millisecond,
	}
}

type Engine struct {
	payments domain.PaymentRepository
	bookings domain.BookingRepository
	meetings domain.MeetingProvider
	notifier Notifier
	mailer   mailer.Mailer
	logger   *slog.Logger
	retry    RetryPolicy
}

func New(
	payments domain.PaymentRepository,
	bookings domain.BookingRepository,
	meetings domain.MeetingProvider,
	notifier Notifier,
	mailer mailer.Mailer,
	logger *slog.Logger,
	retry RetryPolicy) *Engine {

	return &Engine{
		payments: payments,
		bookings: bookings,
		meetings: meetings,
		notifier: notifier,
		mailer:   mailer,
		logger:   logger,
		retry:    retry,
	}
}

// Reconcile applies one webhook event. Unknown event types are swallowed;
// a record that never appears degrades to a speculative keyed update; any
// other error propagates so the receiver answers non-200 and the gateway
// redelivers.
func (e *Engine) Reconcile(ctx context.Context, event gateway.WebhookEvent) error {
	logger := e.logger.With("event", event.Event, "payment_id", event.Payment.ID)

	target, ok := gateway.TargetStatus(event.Event)
	if !ok {
		logger.Info("ignoring unhandled gateway event")
		return nil
	}

	payment, err := e.lookupWithRetry(ctx, event.Payment.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}

		// The record may still land later; the keyed update carries the
		// transition without a pre-read. Provisioning and notification wait
		// for a future event to retrigger the full path.
		updated, err := e.payments.UpdateStatus(ctx, event.Payment.ID, target)
		if err != nil {
			return err
		}

		if !updated {
			logger.Warn("payment record missing after retries, keyed update touched no rows",
				"target", target)
		}

		return nil
	}

	if !payment.Status.CanTransitionTo(target) {
		// Replayed or duplicate delivery. Absorbing it here is what makes
		// gateway retries safe across processes.
		logger.Info("ignoring transition from settled status",
			"status", payment.Status, "target", target)
		return nil
	}

	var (
		booking *domain.Booking
		meeting *domain.Meeting
	)

	if target == domain.PaymentStatusConfirmed && payment.MeetingEventID == nil {
		booking, meeting = e.provision(ctx, payment, logger)
	}

	updated, err := e.payments.UpdateStatus(ctx, payment.ID, target)
	if err != nil {
		return err
	}

	if !updated {
		logger.Warn("payment record disappeared before status write", "target", target)
		return nil
	}

	if meeting != nil {
		err = e.payments.SetMeeting(ctx, payment.ID, meeting.EventID, meeting.JoinLink)
		if err != nil {
			logger.Error("failed to persist meeting reference", "error", err)
		}
	}

	// Always, even when provisioning partially failed: the status itself
	// did change.
	e.notifier.Notify(payment.ID, target)

	if target == domain.PaymentStatusConfirmed && booking != nil {
		e.sendConfirmationEmail(booking, meeting, logger)
	}

	return nil
}

func (e *Engine) lookupWithRetry(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var lastErr error

	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		payment, err := e.payments.GetById(ctx, paymentID)
		if err == nil {
			return payment, nil
		}

		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}

		lastErr = err

		if attempt == e.retry.MaxAttempts {
			break
		}

		select {
		case <-time.After(e.retry.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// provision creates the downstream meeting. Payment truth must not depend on
// a secondary integration, so every failure is logged and returns partial
// results instead of aborting the commit.
func (e *Engine) provision(
	ctx context.Context,
	payment *domain.Payment,
	logger *slog.Logger) (*domain.Booking, *domain.Meeting) {

	booking, err := e.bookings.GetById(ctx, payment.BookingID)
	if err != nil {
		logger.Error("failed to load booking for provisioning",
			"booking_id", payment.BookingID, "error", err)
		return nil, nil
	}

	meeting, err := e.meetings.CreateMeeting(ctx, domain.MeetingRequest{
		Date:            booking.ScheduledDate,
		Time:            booking.ScheduledTime,
		DurationMinutes: booking.DurationMinutes,
		Summary:         "Consulta: " + booking.Subject,
		Description:     "Consulta jurídica com " + booking.ClientName,
		Attendees:       []string{booking.ClientEmail, booking.LawyerEmail},
	})
	if err != nil {
		logger.Error("meeting provisioning failed", "booking_id", booking.ID, "error", err)
		return booking, nil
	}

	return booking, meeting
}

func (e *Engine) sendConfirmationEmail(booking *domain.Booking, meeting *domain.Meeting, logger *slog.Logger) {
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("panic occurred during sending confirmation mail", "panic", p)
			}
		}()

		data := map[string]any{
			"clientName": booking.ClientName,
			"subject":    booking.Subject,
			"date":       booking.ScheduledDate,
			"time":       booking.ScheduledTime,
		}
		if meeting != nil {
			data["joinLink"] = meeting.JoinLink
		}

		err := e.mailer.Send(booking.ClientEmail, "payment_confirmed.tmpl", data)
		if err != nil {
			logger.Error("failed to send confirmation email", "error", err)
		}
	}()
}
