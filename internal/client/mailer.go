package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MailerClient dispatches transactional email through the mail service.
// Notifications are best effort; callers log failures and move on.
type MailerClient struct {
	httpClient *http.Client
	baseURL    string
	from       string
}

// NewMailerClient builds a client for the mail service base URL. An empty
// URL disables the integration.
func NewMailerClient(baseURL, from string) *MailerClient {
	return &MailerClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		from:       from,
	}
}

// Enabled reports whether a mail service is configured.
func (c *MailerClient) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendPayoutNotice emails a consignor that a payout was recorded.
func (c *MailerClient) SendPayoutNotice(ctx context.Context, to, consignorName string, amount decimal.Decimal, periodEnd time.Time) error {
	body := sendRequest{
		From:    c.from,
		To:      to,
		Subject: "Your consignment payout has been recorded",
		Text: fmt.Sprintf("Hi %s,\n\nA payout of $%s covering sales through %s has been recorded for you.\n",
			consignorName, amount.StringFixed(2), periodEnd.Format("January 2, 2006")),
	}
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/send", nil, body, nil); err != nil {
		return fmt.Errorf("send payout notice: %w", err)
	}
	return nil
}
