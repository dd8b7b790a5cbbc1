package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domainpayment "quietsummit/internal/domain/payment"
	"quietsummit/internal/domain/shared/money"
)

// Client is the read-only HTTP client to the payment provider. It only ever
// fetches capture records for logging after a signature already verified.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	KeyID   string
	Secret  string
}

type confirmationResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
	Captured int64  `json:"captured_at"`
}

func (c *Client) Confirmation(ctx context.Context, paymentID string) (domainpayment.Confirmation, error) {
	var zero domainpayment.Confirmation
	if c == nil || c.BaseURL == "" {
		return zero, errors.New("gateway: client not configured")
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	url := fmt.Sprintf("%s/v1/payments/%s", c.BaseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, err
	}
	req.SetBasicAuth(c.KeyID, c.Secret)
	resp, err := httpClient.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}
	var body confirmationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return zero, err
	}
	return domainpayment.Confirmation{
		PaymentID:  body.ID,
		OrderID:    body.OrderID,
		Amount:     money.Money{Amount: body.Amount, Currency: body.Currency},
		Method:     body.Method,
		CapturedAt: time.UnixMilli(body.Captured).UTC(),
	}, nil
}

var _ domainpayment.Gateway = (*Client)(nil)
