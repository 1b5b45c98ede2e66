package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusConfirmed  PaymentStatus = "CONFIRMED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusExpired    PaymentStatus = "EXPIRED"
	PaymentStatusOverdue    PaymentStatus = "OVERDUE"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
	PaymentStatusChargeback PaymentStatus = "CHARGEBACK"
)

// IsTerminal reports whether no further transitions are accepted from s,
// other than the explicit CONFIRMED-origin exceptions (refund, chargeback).
// OVERDUE is not terminal: an overdue PIX charge can still be paid.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusConfirmed, PaymentStatusCancelled, PaymentStatusExpired,
		PaymentStatusRefunded, PaymentStatusChargeback:
		return true
	}

	return false
}

// CanTransitionTo reports whether a status write from s to target is accepted.
// Replayed webhooks land here as same-status or terminal-origin transitions
// and are rejected, which is what makes duplicate deliveries safe.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if s == target {
		return false
	}

	if !s.IsTerminal() {
		return true
	}

	if s == PaymentStatusConfirmed {
		return target == PaymentStatusRefunded || target == PaymentStatusChargeback
	}

	return false
}

// Payment is the durable record for one booking's charge, keyed by the
// identifier the gateway assigned when the charge was created.
type Payment struct {
	ID              string
	BookingID       string
	Status          PaymentStatus
	Amount          decimal.Decimal
	BillingType     string
	MeetingEventID  *string
	MeetingJoinLink *string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetById(ctx context.Context, id string) (*Payment, error)

	// UpdateStatus applies a keyed status write without a pre-read and
	// reports whether a row was touched, so the caller can tell a committed
	// transition from a speculative update against a not-yet-created record.
	UpdateStatus(ctx context.Context, id string, status PaymentStatus) (bool, error)

	// SetMeeting persists the provisioned meeting reference. The write is
	// guarded so the reference is set at most once and never cleared.
	SetMeeting(ctx context.Context, id, eventID, joinLink string) error
}
