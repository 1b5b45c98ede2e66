package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetPayment(t *testing.T) {
	t.Run("returns the gateway's view of the charge", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payments/pay_123", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("access_token"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "pay_123", "status": "RECEIVED", "value": 350.00, "billingType": "PIX"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		result, err := client.GetPayment(context.Background(), "pay_123")
		require.NoError(t, err)

		assert.Equal(t, "pay_123", result.ID)
		assert.Equal(t, "RECEIVED", result.Status)
		assert.True(t, result.Value.Equal(decimal.NewFromFloat(350.00)))
		assert.Equal(t, "PIX", result.BillingType)
	})

	t.Run("maps 404 to record not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		_, err := client.GetPayment(context.Background(), "pay_missing")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("fails on unexpected status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		_, err := client.GetPayment(context.Background(), "pay_123")
		assert.ErrorContains(t, err, "unexpected status 500")
	})
}
