package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentStatusResult is the gateway's view of a charge, returned by the
// status-query API.
type PaymentStatusResult struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Value       decimal.Decimal `json:"value"`
	BillingType string          `json:"billingType"`
}

// Client queries the gateway's REST API. Only the payment status lookup is
// consumed; charge creation belongs to the booking flow.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*PaymentStatusResult, error) {
	url := fmt.Sprintf("%s/payments/%s", c.baseURL, paymentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("access_token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway payment lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrRecordNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("gateway payment lookup: unexpected status %d", resp.StatusCode)
	}

	var result PaymentStatusResult
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("gateway payment lookup: %w", err)
	}

	return &result, nil
}
