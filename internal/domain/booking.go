package domain

import (
	"context"
	"time"
)

// Booking carries the slice of the appointment record that provisioning and
// the confirmation email need. The booking CRUD service owns the full record.
type Booking struct {
	ID              string
	ClientName      string
	ClientEmail     string
	LawyerEmail     string
	ScheduledDate   string
	ScheduledTime   string
	DurationMinutes int
	Subject         string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type BookingRepository interface {
	GetById(ctx context.Context, id string) (*Booking, error)
}
