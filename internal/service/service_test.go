package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"tirehub/backend/internal/cache"
	"tirehub/backend/internal/domain"
	"tirehub/backend/internal/store"
	"tirehub/backend/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.New()
	return New(repo, cache.NoopDashboardCache{}, nil, nil, "", 5)
}

func mustCreateTire(t *testing.T, svc *Service, quantity int, purchasePrice, sellingPrice float64) domain.TireItem {
	t.Helper()
	tire, err := svc.CreateTire(context.Background(), domain.TireCreateRequest{
		Brand:         "MRF",
		TireSize:      "185/65 R15",
		TireType:      domain.TireTypeTubeless,
		Quantity:      quantity,
		PurchasePrice: purchasePrice,
		SellingPrice:  sellingPrice,
	})
	if err != nil {
		t.Fatalf("create tire failed: %v", err)
	}
	return tire
}

func TestCreateSalePercentDiscount(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 10, 700, 1000)

	sale, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerName:  "Ravi Kumar",
		PaymentMode:   "CASH",
		DiscountType:  "percent",
		DiscountValue: 10,
		Items:         []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if sale.Subtotal != 1000 || sale.DiscountAmount != 100 || sale.TotalAmount != 900 {
		t.Fatalf("expected 1000/100/900, got %.2f/%.2f/%.2f", sale.Subtotal, sale.DiscountAmount, sale.TotalAmount)
	}
	if sale.PaymentMode != domain.PaymentModeCash {
		t.Fatalf("expected payment mode normalized to cash, got %s", sale.PaymentMode)
	}
}

func TestCreateSaleFlatDiscountClamped(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 10, 700, 1000)

	sale, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerName:  "Ravi Kumar",
		PaymentMode:   domain.PaymentModeUPI,
		DiscountType:  domain.DiscountTypeFlat,
		DiscountValue: 9999,
		Items:         []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if sale.DiscountAmount != 1000 || sale.TotalAmount != 0 {
		t.Fatalf("expected discount clamped to subtotal, got %.2f and total %.2f", sale.DiscountAmount, sale.TotalAmount)
	}
}

func TestCreateSaleRejectsBadDiscount(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 10, 700, 1000)

	_, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerName:  "Ravi Kumar",
		PaymentMode:   domain.PaymentModeCash,
		DiscountType:  "percent",
		DiscountValue: 150,
		Items:         []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 1}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for >100%% discount, got %v", err)
	}
}

func TestCreateSaleRequiresCustomerAndItems(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerName: "",
		PaymentMode:  domain.PaymentModeCash,
		Items:        []domain.SaleItemRequest{{TireID: 1, Quantity: 1}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty customer, got %v", err)
	}

	_, err = svc.CreateSale(context.Background(), domain.SaleCreateRequest{
		CustomerName: "Ravi",
		PaymentMode:  domain.PaymentModeCash,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for no items, got %v", err)
	}
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 10, 700, 1000)

	var wg sync.WaitGroup
	successes := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.CreateSale(context.Background(), domain.SaleCreateRequest{
				CustomerName: "Customer " + strconv.Itoa(n),
				PaymentMode:  domain.PaymentModeCash,
				Items:        []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 1}},
			})
			if err == nil {
				successes <- struct{}{}
			}
		}(i)
	}
	wg.Wait()
	close(successes)

	sold := len(successes)
	if sold != 10 {
		t.Fatalf("expected exactly 10 units sold, got %d", sold)
	}
	remaining, err := svc.GetTire(context.Background(), tire.ID)
	if err != nil {
		t.Fatalf("get tire failed: %v", err)
	}
	if remaining.Quantity != 0 {
		t.Fatalf("expected stock 0, got %d", remaining.Quantity)
	}
}

func TestProfitSummaryUsesCostSnapshot(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 10, 700, 1000)
	ctx := context.Background()

	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CustomerName: "Ravi Kumar",
		PaymentMode:  domain.PaymentModeCash,
		Items:        []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	// Raising the purchase price after the sale must not change its profit.
	newCost := 900.0
	if _, err := svc.UpdateTire(ctx, tire.ID, domain.TireUpdateRequest{PurchasePrice: &newCost}); err != nil {
		t.Fatalf("update tire failed: %v", err)
	}

	summary, err := svc.ProfitSummary(ctx)
	if err != nil {
		t.Fatalf("profit summary failed: %v", err)
	}
	if summary.TotalProfit != 600 {
		t.Fatalf("expected profit 600 from snapshot cost, got %.2f", summary.TotalProfit)
	}
	if summary.DailyProfit != 600 || summary.MonthlyProfit != 600 {
		t.Fatalf("expected today's sale in daily and monthly buckets, got %.2f/%.2f", summary.DailyProfit, summary.MonthlyProfit)
	}
}

func TestDailyClosingSplitsByPaymentMode(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 20, 700, 1000)
	ctx := context.Background()

	for _, mode := range []string{domain.PaymentModeCash, domain.PaymentModeCash, domain.PaymentModeUPI, domain.PaymentModeCard} {
		if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
			CustomerName: "Customer",
			PaymentMode:  mode,
			Items:        []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("create sale failed: %v", err)
		}
	}

	report, err := svc.DailyClosing(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("daily closing failed: %v", err)
	}
	if report.TotalTransactions != 4 || report.TotalItemsSold != 4 {
		t.Fatalf("expected 4 transactions and 4 items, got %d/%d", report.TotalTransactions, report.TotalItemsSold)
	}
	if report.TotalSales != 4000 {
		t.Fatalf("expected total sales 4000, got %.2f", report.TotalSales)
	}
	if report.CashSales != 2000 || report.UPISales != 1000 || report.CardSales != 1000 {
		t.Fatalf("unexpected payment split: cash=%.2f upi=%.2f card=%.2f", report.CashSales, report.UPISales, report.CardSales)
	}
	if report.TotalProfit != 1200 {
		t.Fatalf("expected profit 1200, got %.2f", report.TotalProfit)
	}
}

func TestUpdateTirePatchesOnlyProvidedFields(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 10, 700, 1000)

	price := 1100.0
	updated, err := svc.UpdateTire(context.Background(), tire.ID, domain.TireUpdateRequest{SellingPrice: &price})
	if err != nil {
		t.Fatalf("update tire failed: %v", err)
	}
	if updated.SellingPrice != 1100 {
		t.Fatalf("expected selling price 1100, got %.2f", updated.SellingPrice)
	}
	if updated.Brand != tire.Brand || updated.Quantity != tire.Quantity || updated.PurchasePrice != tire.PurchasePrice {
		t.Fatalf("expected untouched fields to survive the patch")
	}
}

func TestCreatePurchaseRestocksInventory(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 4, 700, 1000)
	ctx := context.Background()

	purchase, err := svc.CreatePurchase(ctx, domain.PurchaseCreateRequest{
		SupplierName: "Sri Balaji Tyres",
		Items: []domain.PurchaseItemRequest{
			{TireID: tire.ID, Quantity: 6, PurchasePrice: 650},
		},
	})
	if err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}
	if purchase.TotalAmount != 3900 {
		t.Fatalf("expected purchase total 3900, got %.2f", purchase.TotalAmount)
	}

	restocked, err := svc.GetTire(ctx, tire.ID)
	if err != nil {
		t.Fatalf("get tire failed: %v", err)
	}
	if restocked.Quantity != 10 {
		t.Fatalf("expected stock 10 after restock, got %d", restocked.Quantity)
	}
}

func TestLowStockUsesConfiguredThreshold(t *testing.T) {
	svc := newTestService()
	mustCreateTire(t, svc, 3, 700, 1000)
	tall := mustCreateTire(t, svc, 50, 700, 1000)

	low, err := svc.ListLowStockTires(context.Background(), 0)
	if err != nil {
		t.Fatalf("low stock failed: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("expected 1 low stock tire, got %d", len(low))
	}
	if low[0].ID == tall.ID {
		t.Fatalf("well stocked tire should not be flagged")
	}
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	t.Setenv("SEED_ADMIN_PASSWORD", "admin123")
	t.Setenv("SEED_STAFF_PASSWORD", "staff123")
	svc := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})

	if err := svc.ChangePassword(ctx, "wrong-password", "new-secret"); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for wrong old password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "admin123", "new-secret"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if err := svc.ChangePassword(ctx, "new-secret", "short"); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestCreateStaffAndList(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, domain.StaffCreateRequest{
		Username: "Priya",
		Password: "secret123",
		FullName: "Priya S",
	})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if created.Username != "priya" || created.Role != domain.RoleStaff {
		t.Fatalf("unexpected staff user: %+v", created)
	}

	_, err = svc.CreateStaff(ctx, domain.StaffCreateRequest{Username: "priya", Password: "secret123"})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	staff, err := svc.ListStaff(ctx)
	if err != nil {
		t.Fatalf("list staff failed: %v", err)
	}
	if len(staff) != 3 {
		t.Fatalf("expected seeded admin, staff and priya, got %d", len(staff))
	}
}

func TestSendInvoiceWhatsAppUnconfigured(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 5, 700, 1000)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CustomerName:   "Ravi Kumar",
		CustomerMobile: "9876543210",
		PaymentMode:    domain.PaymentModeCash,
		Items:          []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	_, err = svc.SendInvoiceWhatsApp(ctx, sale.ID, "")
	if err == nil {
		t.Fatalf("expected error without a configured relay")
	}
}

func TestDashboardAggregates(t *testing.T) {
	svc := newTestService()
	tire := mustCreateTire(t, svc, 10, 700, 1000)
	ctx := context.Background()

	if _, err := svc.CreateSale(ctx, domain.SaleCreateRequest{
		CustomerName: "Ravi Kumar",
		PaymentMode:  domain.PaymentModeCash,
		Items:        []domain.SaleItemRequest{{TireID: tire.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	dashboard, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dashboard.Summary.TotalSalesToday != 2000 || dashboard.Summary.TotalMonthlyRevenue != 2000 {
		t.Fatalf("expected today's revenue 2000, got %.2f/%.2f", dashboard.Summary.TotalSalesToday, dashboard.Summary.TotalMonthlyRevenue)
	}
	if dashboard.Summary.DailyProfit != 600 {
		t.Fatalf("expected daily profit 600, got %.2f", dashboard.Summary.DailyProfit)
	}
	// 10 in stock minus 2 sold, valued at selling price.
	if dashboard.Summary.TotalInventoryValue != 8000 {
		t.Fatalf("expected inventory value 8000, got %.2f", dashboard.Summary.TotalInventoryValue)
	}
	if len(dashboard.SalesChart) != 7 {
		t.Fatalf("expected a 7-day chart, got %d points", len(dashboard.SalesChart))
	}
	today := time.Now().UTC().Format("2006-01-02")
	last := dashboard.SalesChart[len(dashboard.SalesChart)-1]
	if last.Date != today || last.Amount != 2000 {
		t.Fatalf("expected today's point %s=2000, got %s=%.2f", today, last.Date, last.Amount)
	}
}
