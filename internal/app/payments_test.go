package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/lfmartins/legalflow/internal/gateway"
	"github.com/lfmartins/legalflow/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) GetPayment(ctx context.Context, paymentID string) (*gateway.PaymentStatusResult, error) {
	args := m.Called(ctx, paymentID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*gateway.PaymentStatusResult), args.Error(1)
}

type PaymentStatusTestSuite struct {
	suite.Suite
	app           *application
	paymentRepo   *mocks.MockPaymentRepo
	gatewayClient *MockGatewayClient
}

func (s *PaymentStatusTestSuite) SetupTest() {
	s.paymentRepo = new(mocks.MockPaymentRepo)
	s.gatewayClient = new(MockGatewayClient)

	s.app = newTestApplication(func(a *application) {
		a.paymentRepo = s.paymentRepo
		a.gatewayClient = s.gatewayClient
	})
}

func TestPaymentStatusSuite(t *testing.T) {
	suite.Run(t, new(PaymentStatusTestSuite))
}

func (s *PaymentStatusTestSuite) serve(url string) (int, []byte) {
	r := chi.NewRouter()
	r.Get("/payment-status/{paymentId}", s.app.PaymentStatusHandler)

	w, req := executeRequest(s.T(), http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	return w.Code, w.Body.Bytes()
}

func (s *PaymentStatusTestSuite) TestRejectsMalformedPaymentId() {
	code, _ := s.serve("/payment-status/not-a-payment-id")

	s.Equal(http.StatusUnprocessableEntity, code)
}

func (s *PaymentStatusTestSuite) TestAnswersFromLocalRecord() {
	amount := decimal.NewFromFloat(350.00)

	s.paymentRepo.On("GetById", mock.Anything, "pay_1").Return(&domain.Payment{
		ID:          "pay_1",
		BookingID:   "bk_1",
		Status:      domain.PaymentStatusConfirmed,
		Amount:      amount,
		BillingType: "PIX",
	}, nil).Once()

	code, body := s.serve("/payment-status/pay_1")

	s.Equal(http.StatusOK, code)

	var resp PaymentStatusResponse
	s.Require().NoError(json.Unmarshal(body, &resp))

	s.Equal("pay_1", resp.Id)
	s.Equal(domain.PaymentStatusConfirmed, resp.Status)
	s.True(resp.Local)

	s.gatewayClient.AssertNotCalled(s.T(), "GetPayment", mock.Anything, mock.Anything)
}

func (s *PaymentStatusTestSuite) TestFallsBackToGatewayWhenRecordMissing() {
	s.paymentRepo.On("GetById", mock.Anything, "pay_1").Return(nil, domain.ErrRecordNotFound).Once()
	s.gatewayClient.On("GetPayment", mock.Anything, "pay_1").Return(&gateway.PaymentStatusResult{
		ID:          "pay_1",
		Status:      "RECEIVED",
		Value:       decimal.NewFromFloat(350.00),
		BillingType: "PIX",
	}, nil).Once()

	code, body := s.serve("/payment-status/pay_1")

	s.Equal(http.StatusOK, code)

	var resp PaymentStatusResponse
	s.Require().NoError(json.Unmarshal(body, &resp))

	s.Equal(domain.PaymentStatusConfirmed, resp.Status)
	s.False(resp.Local)
}

func (s *PaymentStatusTestSuite) TestUnknownEverywhereIs404() {
	s.paymentRepo.On("GetById", mock.Anything, "pay_1").Return(nil, domain.ErrRecordNotFound).Once()
	s.gatewayClient.On("GetPayment", mock.Anything, "pay_1").Return(nil, domain.ErrRecordNotFound).Once()

	code, _ := s.serve("/payment-status/pay_1")

	s.Equal(http.StatusNotFound, code)
}

func (s *PaymentStatusTestSuite) TestRepositoryErrorIs500() {
	s.paymentRepo.On("GetById", mock.Anything, "pay_1").Return(nil, errors.New("db down")).Once()

	code, _ := s.serve("/payment-status/pay_1")

	s.Equal(http.StatusInternalServerError, code)
}

type CreatePaymentTestSuite struct {
	suite.Suite
	app         *application
	paymentRepo *mocks.MockPaymentRepo
}

func (s *CreatePaymentTestSuite) SetupTest() {
	s.paymentRepo = new(mocks.MockPaymentRepo)

	s.app = newTestApplication(func(a *application) {
		a.paymentRepo = s.paymentRepo
	})
}

func TestCreatePaymentSuite(t *testing.T) {
	suite.Run(t, new(CreatePaymentTestSuite))
}

func (s *CreatePaymentTestSuite) TestCreatePaymentHandler() {
	tests := []struct {
		name       string
		body       any
		setupMocks func()
		wantStatus int
	}{
		{
			name: "should create payment record as pending",
			body: map[string]any{
				"id":          "pay_1",
				"bookingId":   "bk_1",
				"value":       350.00,
				"billingType": "PIX",
			},
			setupMocks: func() {
				s.paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
					return p.ID == "pay_1" &&
						p.BookingID == "bk_1" &&
						p.Status == domain.PaymentStatusPending
				})).Return(nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "should answer conflict for a duplicate payment id",
			body: map[string]any{
				"id":        "pay_1",
				"bookingId": "bk_1",
			},
			setupMocks: func() {
				s.paymentRepo.On("Create", mock.Anything, mock.Anything).
					Return(domain.ErrPaymentAlreadyExists).Once()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "should reject payload without booking id",
			body: map[string]any{
				"id": "pay_1",
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "should reject malformed payment id",
			body: map[string]any{
				"id":        "not-a-payment-id",
				"bookingId": "bk_1",
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "should surface repository failure as 500",
			body: map[string]any{
				"id":        "pay_1",
				"bookingId": "bk_1",
			},
			setupMocks: func() {
				s.paymentRepo.On("Create", mock.Anything, mock.Anything).
					Return(errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.paymentRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/payments", tt.body)
			http.HandlerFunc(s.app.CreatePaymentHandler).ServeHTTP(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp PaymentStatusResponse
				s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
				s.Equal(domain.PaymentStatusPending, resp.Status)
				s.True(resp.Local)
			}
		})
	}
}
