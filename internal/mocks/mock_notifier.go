package mocks

import (
	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(paymentID string, status domain.PaymentStatus) {
	m.Called(paymentID, status)
}
