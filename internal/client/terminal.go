package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TerminalClient orchestrates card payments on the register's terminal
// gateway. A sale is only persisted once the charge comes back approved.
type TerminalClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewTerminalClient builds a client for the given gateway base URL. An empty
// URL disables the integration.
func NewTerminalClient(baseURL string) *TerminalClient {
	return &TerminalClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Enabled reports whether a gateway is configured.
func (c *TerminalClient) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type chargeRequest struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

// ChargeResponse is the gateway's reply to a charge attempt.
type ChargeResponse struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// Charge runs a card payment for the given amount. Any status other than
// "approved" is returned as an error.
func (c *TerminalClient) Charge(ctx context.Context, amount decimal.Decimal, reference string) (*ChargeResponse, error) {
	body := chargeRequest{
		Amount:    amount.StringFixed(2),
		Currency:  "USD",
		Reference: reference,
	}
	var out ChargeResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/charges", nil, body, &out); err != nil {
		return nil, fmt.Errorf("terminal charge: %w", err)
	}
	if out.Status != "approved" {
		return nil, fmt.Errorf("terminal charge declined: %s %s", out.Status, out.Message)
	}
	return &out, nil
}
