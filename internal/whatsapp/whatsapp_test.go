package whatsapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tirehub/backend/internal/domain"
)

func sampleSale() domain.Sale {
	return domain.Sale{
		InvoiceID:    "INV202501140001",
		CustomerName: "Ravi Kumar",
		TotalAmount:  7500,
		SaleDate:     time.Date(2025, 1, 14, 10, 30, 0, 0, time.UTC),
		Items: []domain.SaleItem{
			{Quantity: 2, TotalPrice: 7800, TireBrand: "MRF", TireSize: "185/65 R15"},
		},
	}
}

func TestSendInvoiceMessage(t *testing.T) {
	var gotTo, gotFrom, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "AC123" || pass != "token" {
			t.Errorf("missing or wrong basic auth")
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		AccountSID: "AC123",
		AuthToken:  "token",
		FromNumber: "+14155238886",
		BaseURL:    server.URL,
	})

	sid, err := client.SendInvoiceMessage(context.Background(), "98765 432-10", sampleSale())
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sid != "SM123" {
		t.Fatalf("expected SM123, got %s", sid)
	}
	if gotTo != "whatsapp:+919876543210" {
		t.Fatalf("expected +91 prefixed number, got %s", gotTo)
	}
	if gotFrom != "whatsapp:+14155238886" {
		t.Fatalf("unexpected from %s", gotFrom)
	}
	if !strings.Contains(gotBody, "INV202501140001") {
		t.Fatalf("expected invoice id in message body")
	}
}

func TestSendInvoiceMessageKeepsInternationalNumbers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostFormValue("To"); got != "whatsapp:+6281234567890" {
			t.Errorf("expected international number untouched, got %s", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM456"}`))
	}))
	defer server.Close()

	client := NewClient(Config{AccountSID: "AC123", AuthToken: "token", FromNumber: "+1415", BaseURL: server.URL})
	if _, err := client.SendInvoiceMessage(context.Background(), "+62 8123-456-7890", sampleSale()); err != nil {
		t.Fatalf("send failed: %v", err)
	}
}

func TestSendInvoiceMessageUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.SendInvoiceMessage(context.Background(), "9876543210", sampleSale()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSendInvoiceMessageTwilioError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authenticate"}`))
	}))
	defer server.Close()

	client := NewClient(Config{AccountSID: "AC123", AuthToken: "bad", FromNumber: "+1415", BaseURL: server.URL})
	_, err := client.SendInvoiceMessage(context.Background(), "9876543210", sampleSale())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected twilio status error, got %v", err)
	}
}
