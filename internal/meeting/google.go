// Package meeting provisions the downstream calendar resource for a
// confirmed appointment: a Google Calendar event carrying a Meet link.
package meeting

import (
	"context"
	"fmt"
	"time"

	"github.com/lfmartins/legalflow/internal/domain"
	"google.golang.org/api/calendar/v3"
)

type GoogleMeetProvider struct {
	service    *calendar.Service
	calendarID string
	timezone   string
}

func NewGoogleMeetProvider(service *calendar.Service, calendarID, timezone string) *GoogleMeetProvider {
	return &GoogleMeetProvider{
		service:    service,
		calendarID: calendarID,
		timezone:   timezone,
	}
}

func (g *GoogleMeetProvider) CreateMeeting(ctx context.Context, req domain.MeetingRequest) (*domain.Meeting, error) {
	loc, err := time.LoadLocation(g.timezone)
	if err != nil {
		return nil, fmt.Errorf("loading meeting timezone: %w", err)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing meeting start: %w", err)
	}

	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	attendees := make([]*calendar.EventAttendee, 0, len(req.Attendees))
	for _, email := range req.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: g.timezone,
		},
		Attendees: attendees,
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: fmt.Sprintf("legalflow-%d", time.Now().UnixNano()),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := g.service.Events.Insert(g.calendarID, event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("creating calendar event: %w", err)
	}

	return &domain.Meeting{
		EventID:  created.Id,
		JoinLink: created.HangoutLink,
	}, nil
}
