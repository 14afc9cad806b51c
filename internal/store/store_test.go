package store

import (
	"errors"
	"testing"
	"time"
)

func TestComputeDiscountPercent(t *testing.T) {
	discount, err := ComputeDiscount("percent", 10, 1000)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if discount != 100 {
		t.Fatalf("expected 100, got %.2f", discount)
	}
}

func TestComputeDiscountPercentOverHundred(t *testing.T) {
	_, err := ComputeDiscount("percent", 150, 1000)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestComputeDiscountFlatClampedToSubtotal(t *testing.T) {
	discount, err := ComputeDiscount("flat", 5000, 1200)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if discount != 1200 {
		t.Fatalf("expected flat discount clamped to 1200, got %.2f", discount)
	}
}

func TestComputeDiscountEmptyTypeMeansNone(t *testing.T) {
	discount, err := ComputeDiscount("", 50, 1000)
	if err != nil {
		t.Fatalf("compute discount failed: %v", err)
	}
	if discount != 0 {
		t.Fatalf("expected no discount, got %.2f", discount)
	}
}

func TestComputeDiscountUnknownType(t *testing.T) {
	_, err := ComputeDiscount("bogus", 50, 1000)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNextInvoiceIDStartsSequence(t *testing.T) {
	day := time.Date(2025, 1, 14, 10, 30, 0, 0, time.UTC)
	id, err := NextInvoiceID("", day)
	if err != nil {
		t.Fatalf("next invoice id failed: %v", err)
	}
	if id != "INV202501140001" {
		t.Fatalf("expected INV202501140001, got %s", id)
	}
}

func TestNextInvoiceIDIncrements(t *testing.T) {
	day := time.Date(2025, 1, 14, 18, 0, 0, 0, time.UTC)
	id, err := NextInvoiceID("INV202501140007", day)
	if err != nil {
		t.Fatalf("next invoice id failed: %v", err)
	}
	if id != "INV202501140008" {
		t.Fatalf("expected INV202501140008, got %s", id)
	}
}

func TestNextInvoiceIDWidensPastFourDigits(t *testing.T) {
	day := time.Date(2025, 1, 14, 18, 0, 0, 0, time.UTC)
	id, err := NextInvoiceID("INV202501149999", day)
	if err != nil {
		t.Fatalf("next invoice id failed: %v", err)
	}
	if id != "INV2025011410000" {
		t.Fatalf("expected INV2025011410000, got %s", id)
	}
}

func TestLaterInvoiceIDOrdersBySequence(t *testing.T) {
	if got := LaterInvoiceID("INV202501149999", "INV2025011410000"); got != "INV2025011410000" {
		t.Fatalf("expected five-digit sequence to win, got %s", got)
	}
	if got := LaterInvoiceID("INV202501140008", "INV202501140007"); got != "INV202501140008" {
		t.Fatalf("expected INV202501140008, got %s", got)
	}
	if got := LaterInvoiceID("", "INV202501140001"); got != "INV202501140001" {
		t.Fatalf("expected non-empty id to win, got %s", got)
	}
}

func TestNextInvoiceIDRejectsForeignDay(t *testing.T) {
	day := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	if _, err := NextInvoiceID("INV202501140007", day); err == nil {
		t.Fatalf("expected error for mismatched day prefix")
	}
}

func TestInvoiceDayPrefix(t *testing.T) {
	day := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	if prefix := InvoiceDayPrefix(day); prefix != "INV20250302" {
		t.Fatalf("expected INV20250302, got %s", prefix)
	}
}
