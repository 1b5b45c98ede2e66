package meeting

import (
	"context"
	"errors"

	"github.com/lfmartins/legalflow/internal/domain"
)

// Unconfigured stands in when no calendar credentials are supplied. Payments
// still confirm; the meeting reference stays unset.
type Unconfigured struct{}

func (Unconfigured) CreateMeeting(ctx context.Context, req domain.MeetingRequest) (*domain.Meeting, error) {
	return nil, errors.New("meeting provisioning is not configured")
}
