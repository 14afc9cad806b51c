package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tirehub/backend/internal/cache"
	"tirehub/backend/internal/domain"
	"tirehub/backend/internal/invoice"
	"tirehub/backend/internal/store"
	"tirehub/backend/internal/whatsapp"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const (
	dashboardCacheKey = "dashboard:v1"
	dashboardCacheTTL = 60 * time.Second

	// profitScanLimit caps how many sales the profit aggregates walk.
	profitScanLimit = 10000
)

type Service struct {
	repo              store.Repository
	dashboards        cache.DashboardCache
	invoices          *invoice.Renderer
	messenger         *whatsapp.Client
	invoiceDir        string
	lowStockThreshold int
}

func New(repo store.Repository, dashboards cache.DashboardCache, invoices *invoice.Renderer, messenger *whatsapp.Client, invoiceDir string, lowStockThreshold int) *Service {
	if dashboards == nil {
		dashboards = cache.NoopDashboardCache{}
	}
	if lowStockThreshold < 1 {
		lowStockThreshold = 5
	}

	return &Service{
		repo:              repo,
		dashboards:        dashboards,
		invoices:          invoices,
		messenger:         messenger,
		invoiceDir:        invoiceDir,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *Service) ListTires(ctx context.Context, skip int, limit int, search string) ([]domain.TireItem, error) {
	return s.repo.ListTires(ctx, skip, limit, search)
}

func (s *Service) GetTire(ctx context.Context, id int64) (domain.TireItem, error) {
	tire, err := s.repo.GetTire(ctx, id)
	if err != nil {
		return domain.TireItem{}, err
	}
	return *tire, nil
}

func (s *Service) CreateTire(ctx context.Context, req domain.TireCreateRequest) (domain.TireItem, error) {
	req.Brand = strings.TrimSpace(req.Brand)
	req.TireSize = strings.TrimSpace(req.TireSize)
	req.TireType = strings.ToLower(strings.TrimSpace(req.TireType))

	if req.Brand == "" || req.TireSize == "" || !domain.IsTireType(req.TireType) {
		return domain.TireItem{}, store.ErrInvalidInput
	}
	if req.Quantity < 0 || req.PurchasePrice < 0 || req.SellingPrice < 0 {
		return domain.TireItem{}, store.ErrInvalidInput
	}

	purchaseDate, err := parseDateOrNow(req.PurchaseDate)
	if err != nil {
		return domain.TireItem{}, store.ErrInvalidInput
	}

	tire := domain.TireItem{
		Brand:         req.Brand,
		TireSize:      req.TireSize,
		TireType:      req.TireType,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		SupplierID:    req.SupplierID,
		PurchaseDate:  purchaseDate,
	}

	created, err := s.repo.CreateTire(ctx, tire)
	if err != nil {
		return domain.TireItem{}, err
	}
	s.invalidateDashboard(ctx)
	return *created, nil
}

func (s *Service) UpdateTire(ctx context.Context, id int64, req domain.TireUpdateRequest) (domain.TireItem, error) {
	existing, err := s.repo.GetTire(ctx, id)
	if err != nil {
		return domain.TireItem{}, err
	}

	updated := *existing
	if req.Brand != nil {
		brand := strings.TrimSpace(*req.Brand)
		if brand == "" {
			return domain.TireItem{}, store.ErrInvalidInput
		}
		updated.Brand = brand
	}
	if req.TireSize != nil {
		size := strings.TrimSpace(*req.TireSize)
		if size == "" {
			return domain.TireItem{}, store.ErrInvalidInput
		}
		updated.TireSize = size
	}
	if req.TireType != nil {
		tireType := strings.ToLower(strings.TrimSpace(*req.TireType))
		if !domain.IsTireType(tireType) {
			return domain.TireItem{}, store.ErrInvalidInput
		}
		updated.TireType = tireType
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return domain.TireItem{}, store.ErrInvalidInput
		}
		updated.Quantity = *req.Quantity
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return domain.TireItem{}, store.ErrInvalidInput
		}
		updated.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		if *req.SellingPrice < 0 {
			return domain.TireItem{}, store.ErrInvalidInput
		}
		updated.SellingPrice = *req.SellingPrice
	}
	if req.SupplierID != nil {
		updated.SupplierID = req.SupplierID
	}
	if req.PurchaseDate != nil {
		purchaseDate, err := parseDate(*req.PurchaseDate)
		if err != nil {
			return domain.TireItem{}, store.ErrInvalidInput
		}
		updated.PurchaseDate = purchaseDate
	}

	saved, err := s.repo.UpdateTire(ctx, updated)
	if err != nil {
		return domain.TireItem{}, err
	}
	s.invalidateDashboard(ctx)
	return *saved, nil
}

func (s *Service) DeleteTire(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTire(ctx, id); err != nil {
		return err
	}
	s.invalidateDashboard(ctx)
	return nil
}

// AdjustTireStock applies a manual stock correction, e.g. after a physical
// count. The store rejects adjustments that would drive stock negative.
func (s *Service) AdjustTireStock(ctx context.Context, id int64, delta int) (domain.TireItem, error) {
	if delta == 0 {
		return domain.TireItem{}, store.ErrInvalidInput
	}
	tire, err := s.repo.AdjustTireQuantity(ctx, id, delta)
	if err != nil {
		return domain.TireItem{}, err
	}
	s.invalidateDashboard(ctx)
	return *tire, nil
}

func (s *Service) ListLowStockTires(ctx context.Context, threshold int) ([]domain.TireItem, error) {
	if threshold < 1 {
		threshold = s.lowStockThreshold
	}
	return s.repo.ListLowStockTires(ctx, threshold)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Supplier{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateSupplier(ctx, domain.Supplier{
		Name:          req.Name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
	})
	if err != nil {
		return domain.Supplier{}, err
	}
	return *created, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (domain.Supplier, error) {
	supplier, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return domain.Supplier{}, err
	}
	return *supplier, nil
}

// CreateSale validates the request shape and hands the priced flow to the
// store, which runs it as a single atomic unit. Prices, costs, discount
// amount, and the invoice id all come back computed by the store.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerMobile = strings.TrimSpace(req.CustomerMobile)
	req.PaymentMode = strings.ToLower(strings.TrimSpace(req.PaymentMode))
	req.DiscountType = strings.ToLower(strings.TrimSpace(req.DiscountType))

	if req.CustomerName == "" || len(req.Items) == 0 {
		return domain.Sale{}, store.ErrInvalidInput
	}
	if !domain.IsPaymentMode(req.PaymentMode) {
		return domain.Sale{}, store.ErrInvalidInput
	}
	if req.DiscountType != "" && !domain.IsDiscountType(req.DiscountType) {
		return domain.Sale{}, store.ErrInvalidInput
	}
	if req.DiscountValue < 0 {
		return domain.Sale{}, store.ErrInvalidInput
	}

	items := make([]domain.SaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.TireID < 1 || item.Quantity < 1 {
			return domain.Sale{}, store.ErrInvalidInput
		}
		items = append(items, domain.SaleItem{TireID: item.TireID, Quantity: item.Quantity})
	}

	sale := domain.Sale{
		CustomerName:   req.CustomerName,
		CustomerMobile: req.CustomerMobile,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		Notes:          strings.TrimSpace(req.Notes),
		PaymentMode:    req.PaymentMode,
		SaleDate:       time.Now().UTC(),
		Items:          items,
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	s.invalidateDashboard(ctx)
	log.Printf("[service] sale recorded invoice=%s total=%.2f items=%d", created.InvoiceID, created.TotalAmount, len(created.Items))
	return *created, nil
}

func (s *Service) ListSales(ctx context.Context, skip int, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, skip, limit)
}

func (s *Service) GetSale(ctx context.Context, id int64) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) GetSaleByInvoiceID(ctx context.Context, invoiceID string) (domain.Sale, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return domain.Sale{}, store.ErrInvalidInput
	}
	sale, err := s.repo.GetSaleByInvoiceID(ctx, invoiceID)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

// SalesReport lists sales whose sale date falls within the inclusive
// [from, to] calendar-day range.
func (s *Service) SalesReport(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	start := dateOf(from)
	end := dateOf(to).Add(24 * time.Hour)
	if end.Before(start) {
		return nil, store.ErrInvalidInput
	}
	return s.repo.ListSalesByDateRange(ctx, start, end)
}

// saleCost sums quantity times the cost captured at sale time. Rows written
// before cost snapshots existed carry a zero cost; those fall back to the
// tire's current purchase price.
func (s *Service) saleCost(ctx context.Context, sale domain.Sale) float64 {
	cost := 0.0
	for _, item := range sale.Items {
		unitCost := item.UnitCost
		if unitCost == 0 {
			if tire, err := s.repo.GetTire(ctx, item.TireID); err == nil {
				unitCost = tire.PurchasePrice
			}
		}
		cost += float64(item.Quantity) * unitCost
	}
	return cost
}

func (s *Service) ProfitSummary(ctx context.Context) (domain.ProfitSummary, error) {
	sales, err := s.repo.ListSales(ctx, 0, profitScanLimit)
	if err != nil {
		return domain.ProfitSummary{}, err
	}

	now := time.Now().UTC()
	today := dateOf(now)
	summary := domain.ProfitSummary{}
	for _, sale := range sales {
		profit := sale.TotalAmount - s.saleCost(ctx, sale)
		summary.TotalProfit += profit
		saleDay := dateOf(sale.SaleDate)
		if saleDay.Equal(today) {
			summary.DailyProfit += profit
		}
		if saleDay.Year() == today.Year() && saleDay.Month() == today.Month() {
			summary.MonthlyProfit += profit
		}
	}
	return summary, nil
}

func (s *Service) ProfitDetails(ctx context.Context, skip int, limit int) ([]domain.SaleProfitDetail, error) {
	sales, err := s.repo.ListSales(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	details := make([]domain.SaleProfitDetail, 0, len(sales))
	for _, sale := range sales {
		cost := s.saleCost(ctx, sale)
		details = append(details, domain.SaleProfitDetail{
			SaleID:       sale.ID,
			InvoiceID:    sale.InvoiceID,
			CustomerName: sale.CustomerName,
			TotalAmount:  sale.TotalAmount,
			TotalCost:    cost,
			Profit:       sale.TotalAmount - cost,
			SaleDate:     sale.SaleDate.Format("2006-01-02"),
		})
	}
	return details, nil
}

// DailyClosing aggregates one calendar day of sales: revenue, profit, the
// revenue split by payment mode, units sold, and transaction count.
func (s *Service) DailyClosing(ctx context.Context, day time.Time) (domain.DailyClosingReport, error) {
	start := dateOf(day)
	end := start.Add(24 * time.Hour)

	sales, err := s.repo.ListSalesByDateRange(ctx, start, end)
	if err != nil {
		return domain.DailyClosingReport{}, err
	}

	report := domain.DailyClosingReport{Date: start.Format("2006-01-02")}
	for _, sale := range sales {
		report.TotalSales += sale.TotalAmount
		report.TotalProfit += sale.TotalAmount - s.saleCost(ctx, sale)
		report.TotalTransactions++
		for _, item := range sale.Items {
			report.TotalItemsSold += item.Quantity
		}
		switch sale.PaymentMode {
		case domain.PaymentModeCash:
			report.CashSales += sale.TotalAmount
		case domain.PaymentModeUPI:
			report.UPISales += sale.TotalAmount
		case domain.PaymentModeCard:
			report.CardSales += sale.TotalAmount
		}
	}
	return report, nil
}

func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	req.SupplierName = strings.TrimSpace(req.SupplierName)
	req.PaymentStatus = strings.ToLower(strings.TrimSpace(req.PaymentStatus))

	if req.SupplierName == "" || len(req.Items) == 0 {
		return domain.Purchase{}, store.ErrInvalidInput
	}
	if req.PaymentStatus != "" && !domain.IsPaymentStatus(req.PaymentStatus) {
		return domain.Purchase{}, store.ErrInvalidInput
	}
	purchaseDate, err := parseDateOrNow(req.PurchaseDate)
	if err != nil {
		return domain.Purchase{}, store.ErrInvalidInput
	}

	items := make([]domain.PurchaseItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.TireID < 1 || item.Quantity < 1 || item.PurchasePrice < 0 {
			return domain.Purchase{}, store.ErrInvalidInput
		}
		items = append(items, domain.PurchaseItem{
			TireID:        item.TireID,
			Quantity:      item.Quantity,
			PurchasePrice: item.PurchasePrice,
		})
	}

	purchase := domain.Purchase{
		SupplierName:  req.SupplierName,
		PurchaseDate:  purchaseDate,
		PaymentStatus: req.PaymentStatus,
		Items:         items,
	}

	created, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return domain.Purchase{}, err
	}
	s.invalidateDashboard(ctx)
	return *created, nil
}

func (s *Service) ListPurchases(ctx context.Context, skip int, limit int) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx, skip, limit)
}

func (s *Service) GetPurchase(ctx context.Context, id int64) (domain.Purchase, error) {
	purchase, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	return *purchase, nil
}

func (s *Service) UpdatePurchase(ctx context.Context, id int64, req domain.PurchaseUpdateRequest) (domain.Purchase, error) {
	existing, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}

	updated := *existing
	if req.SupplierName != nil {
		name := strings.TrimSpace(*req.SupplierName)
		if name == "" {
			return domain.Purchase{}, store.ErrInvalidInput
		}
		updated.SupplierName = name
	}
	if req.PaymentStatus != nil {
		status := strings.ToLower(strings.TrimSpace(*req.PaymentStatus))
		if !domain.IsPaymentStatus(status) {
			return domain.Purchase{}, store.ErrInvalidInput
		}
		updated.PaymentStatus = status
	}
	if req.PurchaseDate != nil {
		purchaseDate, err := parseDate(*req.PurchaseDate)
		if err != nil {
			return domain.Purchase{}, store.ErrInvalidInput
		}
		updated.PurchaseDate = purchaseDate
	}

	saved, err := s.repo.UpdatePurchase(ctx, updated)
	if err != nil {
		return domain.Purchase{}, err
	}
	return *saved, nil
}

func (s *Service) DeletePurchase(ctx context.Context, id int64) error {
	return s.repo.DeletePurchase(ctx, id)
}

// Dashboard serves the landing-page aggregates, from the cache when warm.
func (s *Service) Dashboard(ctx context.Context) (domain.DashboardResponse, error) {
	if cached, ok, err := s.dashboards.Get(ctx, dashboardCacheKey); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: dashboard cache read failed: %v", err)
	}

	now := time.Now().UTC()
	today := dateOf(now)
	tomorrow := today.Add(24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	weekStart := today.AddDate(0, 0, -6)

	monthSales, err := s.repo.ListSalesByDateRange(ctx, monthStart, tomorrow)
	if err != nil {
		return domain.DashboardResponse{}, err
	}
	weekSales, err := s.repo.ListSalesByDateRange(ctx, weekStart, tomorrow)
	if err != nil {
		return domain.DashboardResponse{}, err
	}
	lowStock, err := s.repo.ListLowStockTires(ctx, s.lowStockThreshold)
	if err != nil {
		return domain.DashboardResponse{}, err
	}
	tires, err := s.repo.ListTires(ctx, 0, profitScanLimit, "")
	if err != nil {
		return domain.DashboardResponse{}, err
	}

	resp := domain.DashboardResponse{}
	for _, sale := range monthSales {
		profit := sale.TotalAmount - s.saleCost(ctx, sale)
		resp.Summary.TotalMonthlyRevenue += sale.TotalAmount
		resp.Summary.MonthlyProfit += profit
		if !sale.SaleDate.Before(today) {
			resp.Summary.TotalSalesToday += sale.TotalAmount
			resp.Summary.DailyProfit += profit
		}
	}

	resp.Summary.LowStockCount = len(lowStock)
	resp.LowStockItems = make([]domain.LowStockItem, 0, len(lowStock))
	for _, tire := range lowStock {
		resp.LowStockItems = append(resp.LowStockItems, domain.LowStockItem{
			ID:       tire.ID,
			Brand:    tire.Brand,
			TireSize: tire.TireSize,
			Quantity: tire.Quantity,
		})
	}

	resp.Summary.TotalItems = len(tires)
	for _, tire := range tires {
		resp.Summary.TotalInventoryValue += float64(tire.Quantity) * tire.SellingPrice
	}

	byDay := make(map[string]float64, 7)
	for _, sale := range weekSales {
		byDay[dateOf(sale.SaleDate).Format("2006-01-02")] += sale.TotalAmount
	}
	resp.SalesChart = make([]domain.SalesChartPoint, 0, 7)
	for d := weekStart; d.Before(tomorrow); d = d.Add(24 * time.Hour) {
		key := d.Format("2006-01-02")
		resp.SalesChart = append(resp.SalesChart, domain.SalesChartPoint{Date: key, Amount: byDay[key]})
	}

	if err := s.dashboards.Set(ctx, dashboardCacheKey, &resp, dashboardCacheTTL); err != nil {
		log.Printf("[service] WARN: dashboard cache write failed: %v", err)
	}
	return resp, nil
}

// InvoicePDF renders the invoice for a sale and, when an invoice directory is
// configured, also writes invoice_<invoiceID>.pdf there.
func (s *Service) InvoicePDF(ctx context.Context, saleID int64) ([]byte, string, error) {
	if s.invoices == nil {
		return nil, "", errors.New("invoice renderer not configured")
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.invoices.Render(*sale)
	if err != nil {
		return nil, "", fmt.Errorf("render invoice %s: %w", sale.InvoiceID, err)
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", sale.InvoiceID)
	if s.invoiceDir != "" {
		if err := os.MkdirAll(s.invoiceDir, 0o755); err == nil {
			if err := os.WriteFile(filepath.Join(s.invoiceDir, fileName), pdf, 0o644); err != nil {
				log.Printf("[service] WARN: failed to persist %s: %v", fileName, err)
			}
		} else {
			log.Printf("[service] WARN: failed to create invoice dir %s: %v", s.invoiceDir, err)
		}
	}
	return pdf, fileName, nil
}

// SendInvoiceWhatsApp pushes an invoice summary to the customer's WhatsApp
// number via the configured relay. An explicit mobile overrides the number
// stored on the sale.
func (s *Service) SendInvoiceWhatsApp(ctx context.Context, saleID int64, mobile string) (domain.WhatsAppSendResponse, error) {
	if s.messenger == nil {
		return domain.WhatsAppSendResponse{}, whatsapp.ErrNotConfigured
	}

	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return domain.WhatsAppSendResponse{}, err
	}

	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		mobile = sale.CustomerMobile
	}
	if mobile == "" {
		return domain.WhatsAppSendResponse{}, store.ErrInvalidInput
	}

	sid, err := s.messenger.SendInvoiceMessage(ctx, mobile, *sale)
	if err != nil {
		return domain.WhatsAppSendResponse{}, err
	}
	return domain.WhatsAppSendResponse{
		Success:    true,
		Message:    fmt.Sprintf("invoice %s sent", sale.InvoiceID),
		MessageSID: sid,
	}, nil
}

func (s *Service) CreateStaff(ctx context.Context, req domain.StaffCreateRequest) (domain.StaffUser, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || len(req.Password) < 6 {
		return domain.StaffUser{}, store.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.StaffUser{}, err
	}

	user := domain.UserAccount{
		Username:  req.Username,
		Password:  string(hash),
		FullName:  strings.TrimSpace(req.FullName),
		Role:      domain.RoleStaff,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.StaffUser{}, err
	}
	return domain.StaffUser{
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]domain.StaffUser, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	staff := make([]domain.StaffUser, 0, len(users))
	for _, user := range users {
		staff = append(staff, domain.StaffUser{
			Username:  user.Username,
			FullName:  user.FullName,
			Role:      user.Role,
			Active:    user.Active,
			CreatedAt: user.CreatedAt,
		})
	}
	return staff, nil
}

func (s *Service) ChangePassword(ctx context.Context, oldPassword string, newPassword string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return errors.New("no authenticated actor")
	}
	if len(newPassword) < 6 {
		return store.ErrInvalidInput
	}

	user, err := s.repo.GetUserByUsername(ctx, actor.Username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return store.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdateUserPassword(ctx, actor.Username, string(hash))
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if err := s.dashboards.Invalidate(ctx, dashboardCacheKey); err != nil {
		log.Printf("[service] WARN: dashboard cache invalidate failed: %v", err)
	}
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

func parseDateOrNow(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Now().UTC(), nil
	}
	return parseDate(value)
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
