package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tirehub/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
)

type Repository interface {
	ListTires(ctx context.Context, skip int, limit int, search string) ([]domain.TireItem, error)
	GetTire(ctx context.Context, id int64) (*domain.TireItem, error)
	CreateTire(ctx context.Context, tire domain.TireItem) (*domain.TireItem, error)
	UpdateTire(ctx context.Context, tire domain.TireItem) (*domain.TireItem, error)
	DeleteTire(ctx context.Context, id int64) error
	AdjustTireQuantity(ctx context.Context, id int64, delta int) (*domain.TireItem, error)
	ListLowStockTires(ctx context.Context, threshold int) ([]domain.TireItem, error)

	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)

	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	GetSaleByInvoiceID(ctx context.Context, invoiceID string) (*domain.Sale, error)
	ListSales(ctx context.Context, skip int, limit int) ([]domain.Sale, error)
	ListSalesByDateRange(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error)

	CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, skip int, limit int) ([]domain.Purchase, error)
	UpdatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, user domain.UserAccount) error
	GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

// ComputeDiscount resolves a discount descriptor against a subtotal. A percent
// discount takes value% of the subtotal; a flat discount is the value itself,
// clamped so the total never goes negative. An empty type or non-positive
// value means no discount.
func ComputeDiscount(discountType string, value float64, subtotal float64) (float64, error) {
	if discountType == "" || value <= 0 {
		return 0, nil
	}
	switch discountType {
	case domain.DiscountTypePercent:
		if value > 100 {
			return 0, ErrInvalidInput
		}
		return subtotal * value / 100, nil
	case domain.DiscountTypeFlat:
		if value > subtotal {
			return subtotal, nil
		}
		return value, nil
	}
	return 0, ErrInvalidInput
}

const invoiceIDPrefix = "INV"

// InvoiceDayPrefix returns the invoice id prefix for every sale recorded on
// the given local calendar day, e.g. INV20250114.
func InvoiceDayPrefix(at time.Time) string {
	return invoiceIDPrefix + at.Format("20060102")
}

// NextInvoiceID derives the next invoice id in a day's sequence from the
// highest id already allocated for that day. An empty lastID starts the
// sequence at 0001.
func NextInvoiceID(lastID string, at time.Time) (string, error) {
	prefix := InvoiceDayPrefix(at)
	seq := 1
	if lastID != "" {
		if !strings.HasPrefix(lastID, prefix) {
			return "", fmt.Errorf("invoice id %q does not match day prefix %s", lastID, prefix)
		}
		last, err := strconv.Atoi(strings.TrimPrefix(lastID, prefix))
		if err != nil {
			return "", fmt.Errorf("invoice id %q has malformed sequence: %w", lastID, err)
		}
		seq = last + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// LaterInvoiceID returns the higher of two invoice ids from the same day's
// sequence. Plain string comparison mis-orders once the sequence passes 9999
// and the suffix widens to five digits, so a longer id always wins.
func LaterInvoiceID(a, b string) string {
	if len(a) != len(b) {
		if len(a) > len(b) {
			return a
		}
		return b
	}
	if a > b {
		return a
	}
	return b
}
