package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status PaymentStatus
		want   bool
	}{
		{PaymentStatusPending, false},
		{PaymentStatusOverdue, false},
		{PaymentStatusConfirmed, true},
		{PaymentStatusCancelled, true},
		{PaymentStatusExpired, true},
		{PaymentStatusRefunded, true},
		{PaymentStatusChargeback, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestPaymentStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{"pending confirms", PaymentStatusPending, PaymentStatusConfirmed, true},
		{"pending cancels", PaymentStatusPending, PaymentStatusCancelled, true},
		{"pending goes overdue", PaymentStatusPending, PaymentStatusOverdue, true},
		{"overdue still confirms", PaymentStatusOverdue, PaymentStatusConfirmed, true},
		{"overdue cancels", PaymentStatusOverdue, PaymentStatusCancelled, true},
		{"same status replay is a no-op", PaymentStatusConfirmed, PaymentStatusConfirmed, false},
		{"pending replay is a no-op", PaymentStatusPending, PaymentStatusPending, false},
		{"confirmed refunds", PaymentStatusConfirmed, PaymentStatusRefunded, true},
		{"confirmed charges back", PaymentStatusConfirmed, PaymentStatusChargeback, true},
		{"confirmed does not cancel", PaymentStatusConfirmed, PaymentStatusCancelled, false},
		{"confirmed does not revert to pending", PaymentStatusConfirmed, PaymentStatusPending, false},
		{"cancelled accepts nothing", PaymentStatusCancelled, PaymentStatusConfirmed, false},
		{"expired accepts nothing", PaymentStatusExpired, PaymentStatusConfirmed, false},
		{"refunded accepts nothing", PaymentStatusRefunded, PaymentStatusChargeback, false},
		{"chargeback accepts nothing", PaymentStatusChargeback, PaymentStatusRefunded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}
