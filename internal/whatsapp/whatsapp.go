// Package whatsapp sends invoice notifications through the Twilio
// WhatsApp messaging API.
package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tirehub/backend/internal/domain"
)

// ErrNotConfigured is returned when Twilio credentials are absent; callers
// map it to a 503 so the rest of the API keeps working without WhatsApp.
var ErrNotConfigured = errors.New("whatsapp relay not configured")

const defaultBaseURL = "https://api.twilio.com"

type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// BaseURL overrides the Twilio endpoint, used by tests.
	BaseURL string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.AccountSID != "" && c.cfg.AuthToken != "" && c.cfg.FromNumber != ""
}

// SendInvoiceMessage sends a plain-text invoice summary to the customer.
// Bare 10-digit local numbers get the +91 country prefix.
func (c *Client) SendInvoiceMessage(ctx context.Context, mobile string, sale domain.Sale) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	to := normalizeNumber(mobile)
	if to == "" {
		return "", fmt.Errorf("invalid mobile number %q", mobile)
	}

	form := url.Values{}
	form.Set("From", "whatsapp:"+c.cfg.FromNumber)
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", invoiceMessage(sale))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		SID     string `json:"sid"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("twilio response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("twilio status %d: %s", resp.StatusCode, body.Message)
	}
	return body.SID, nil
}

func normalizeNumber(mobile string) string {
	mobile = strings.TrimSpace(mobile)
	mobile = strings.ReplaceAll(mobile, " ", "")
	mobile = strings.ReplaceAll(mobile, "-", "")
	if mobile == "" {
		return ""
	}
	if strings.HasPrefix(mobile, "+") {
		return mobile
	}
	return "+91" + mobile
}

func invoiceMessage(sale domain.Sale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice %s\n", sale.InvoiceID)
	fmt.Fprintf(&b, "Date: %s\n\n", sale.SaleDate.Format("02 Jan 2006"))
	for _, item := range sale.Items {
		fmt.Fprintf(&b, "%s %s x%d = Rs. %.2f\n", item.TireBrand, item.TireSize, item.Quantity, item.TotalPrice)
	}
	if sale.DiscountAmount > 0 {
		fmt.Fprintf(&b, "\nDiscount: Rs. %.2f", sale.DiscountAmount)
	}
	fmt.Fprintf(&b, "\nTotal: Rs. %.2f\n\nThank you for your business!", sale.TotalAmount)
	return b.String()
}
