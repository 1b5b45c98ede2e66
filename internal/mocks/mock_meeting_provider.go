package mocks

import (
	"context"

	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockMeetingProvider struct {
	mock.Mock
	domain.MeetingProvider
}

func (m *MockMeetingProvider) CreateMeeting(ctx context.Context, req domain.MeetingRequest) (*domain.Meeting, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Meeting), args.Error(1)
}
