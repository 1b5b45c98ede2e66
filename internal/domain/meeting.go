package domain

import "context"

// Meeting is the provisioned downstream resource for a confirmed payment.
type Meeting struct {
	EventID  string
	JoinLink string
}

type MeetingRequest struct {
	Date            string
	Time            string
	DurationMinutes int
	Summary         string
	Description     string
	Attendees       []string
}

// MeetingProvider creates the calendar event and conference link for a
// confirmed appointment. Failures are non-fatal to the payment commit.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error)
}
