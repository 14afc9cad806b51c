package invoice

import (
	"bytes"
	"testing"
	"time"

	"tirehub/backend/internal/domain"
)

func sampleSale() domain.Sale {
	return domain.Sale{
		ID:             1,
		InvoiceID:      "INV202501140001",
		CustomerName:   "Ravi Kumar",
		CustomerMobile: "9876543210",
		Subtotal:       7800,
		DiscountAmount: 300,
		TotalAmount:    7500,
		PaymentMode:    domain.PaymentModeCash,
		SaleDate:       time.Date(2025, 1, 14, 10, 30, 0, 0, time.UTC),
		Items: []domain.SaleItem{
			{TireID: 1, Quantity: 2, UnitPrice: 3900, TotalPrice: 7800, TireBrand: "MRF", TireSize: "185/65 R15"},
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	renderer := NewRenderer(ShopInfo{
		Name:    "Sharma Tyres",
		Address: "12 MG Road, Pune",
		Phone:   "020-12345678",
		GSTIN:   "27ABCDE1234F1Z5",
	})

	pdf, err := renderer.Render(sampleSale())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", pdf[:8])
	}
	if len(pdf) < 500 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(pdf))
	}
}

func TestRenderHandlesMissingOptionalFields(t *testing.T) {
	renderer := NewRenderer(ShopInfo{})

	sale := sampleSale()
	sale.CustomerMobile = ""
	sale.DiscountAmount = 0
	sale.Notes = "Fitment included"

	pdf, err := renderer.Render(sale)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("expected PDF header")
	}
}
