package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tirehub/backend/internal/domain"
	"tirehub/backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	tiresByID       map[int64]domain.TireItem
	suppliersByID   map[int64]domain.Supplier
	salesByID       map[int64]*domain.Sale
	purchasesByID   map[int64]*domain.Purchase
	usersByUsername map[string]domain.UserAccount

	nextTireID     int64
	nextSupplierID int64
	nextSaleID     int64
	nextSaleItemID int64
	nextPurchaseID int64
	nextPurchItmID int64
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		fullName string
		role     string
	}{
		{"admin", adminPwd, "Shop Owner", domain.RoleAdmin},
		{"staff", staffPwd, "Counter Staff", domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			FullName:  u.fullName,
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func New() *Store {
	return &Store{
		tiresByID:       make(map[int64]domain.TireItem),
		suppliersByID:   make(map[int64]domain.Supplier),
		salesByID:       make(map[int64]*domain.Sale),
		purchasesByID:   make(map[int64]*domain.Purchase),
		usersByUsername: seedUsers(),
	}
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	tires := []domain.TireItem{
		{Brand: "MRF", TireSize: "185/65 R15", TireType: domain.TireTypeTubeless, Quantity: 24, PurchasePrice: 3200, SellingPrice: 3900, PurchaseDate: now},
		{Brand: "CEAT", TireSize: "145/80 R12", TireType: domain.TireTypeTubeless, Quantity: 18, PurchasePrice: 2100, SellingPrice: 2650, PurchaseDate: now},
		{Brand: "Apollo", TireSize: "195/55 R16", TireType: domain.TireTypeTubeless, Quantity: 12, PurchasePrice: 4400, SellingPrice: 5300, PurchaseDate: now},
		{Brand: "JK Tyre", TireSize: "3.00-17", TireType: domain.TireTypeTube, Quantity: 30, PurchasePrice: 1450, SellingPrice: 1850, PurchaseDate: now},
		{Brand: "Michelin", TireSize: "205/60 R16", TireType: domain.TireTypeTubeless, Quantity: 6, PurchasePrice: 6800, SellingPrice: 8200, PurchaseDate: now},
		{Brand: "Bridgestone", TireSize: "175/65 R14", TireType: domain.TireTypeTubeless, Quantity: 3, PurchasePrice: 3600, SellingPrice: 4350, PurchaseDate: now},
	}
	for _, tire := range tires {
		s.nextTireID++
		tire.ID = s.nextTireID
		s.tiresByID[tire.ID] = tire
	}
	return s
}

func (s *Store) ListTires(_ context.Context, skip int, limit int, search string) ([]domain.TireItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	tires := make([]domain.TireItem, 0, len(s.tiresByID))
	for _, tire := range s.tiresByID {
		if search != "" &&
			!strings.Contains(strings.ToLower(tire.Brand), search) &&
			!strings.Contains(strings.ToLower(tire.TireSize), search) {
			continue
		}
		tires = append(tires, s.withSupplierName(tire))
	}

	slices.SortFunc(tires, func(a, b domain.TireItem) int {
		return int(a.ID - b.ID)
	})

	return paginate(tires, skip, limit), nil
}

func (s *Store) GetTire(_ context.Context, id int64) (*domain.TireItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tire, exists := s.tiresByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyTire := s.withSupplierName(tire)
	return &copyTire, nil
}

func (s *Store) CreateTire(_ context.Context, tire domain.TireItem) (*domain.TireItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tire.Brand == "" || tire.TireSize == "" || !domain.IsTireType(tire.TireType) {
		return nil, store.ErrInvalidInput
	}
	if tire.Quantity < 0 || tire.PurchasePrice < 0 || tire.SellingPrice < 0 {
		return nil, store.ErrInvalidInput
	}
	if tire.SupplierID != nil {
		if _, exists := s.suppliersByID[*tire.SupplierID]; !exists {
			return nil, store.ErrNotFound
		}
	}
	if tire.PurchaseDate.IsZero() {
		tire.PurchaseDate = time.Now().UTC()
	}

	s.nextTireID++
	tire.ID = s.nextTireID
	s.tiresByID[tire.ID] = tire
	created := s.withSupplierName(tire)
	return &created, nil
}

func (s *Store) UpdateTire(_ context.Context, tire domain.TireItem) (*domain.TireItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tiresByID[tire.ID]; !exists {
		return nil, store.ErrNotFound
	}
	if tire.Brand == "" || tire.TireSize == "" || !domain.IsTireType(tire.TireType) {
		return nil, store.ErrInvalidInput
	}
	if tire.Quantity < 0 || tire.PurchasePrice < 0 || tire.SellingPrice < 0 {
		return nil, store.ErrInvalidInput
	}
	if tire.SupplierID != nil {
		if _, exists := s.suppliersByID[*tire.SupplierID]; !exists {
			return nil, store.ErrNotFound
		}
	}

	s.tiresByID[tire.ID] = tire
	updated := s.withSupplierName(tire)
	return &updated, nil
}

func (s *Store) DeleteTire(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tiresByID[id]; !exists {
		return store.ErrNotFound
	}
	for _, sale := range s.salesByID {
		for _, item := range sale.Items {
			if item.TireID == id {
				return store.ErrConflict
			}
		}
	}
	for _, purchase := range s.purchasesByID {
		for _, item := range purchase.Items {
			if item.TireID == id {
				return store.ErrConflict
			}
		}
	}

	delete(s.tiresByID, id)
	return nil
}

func (s *Store) AdjustTireQuantity(_ context.Context, id int64, delta int) (*domain.TireItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tire, exists := s.tiresByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if tire.Quantity+delta < 0 {
		return nil, store.ErrInsufficientStock
	}
	tire.Quantity += delta
	s.tiresByID[id] = tire
	updated := s.withSupplierName(tire)
	return &updated, nil
}

func (s *Store) ListLowStockTires(_ context.Context, threshold int) ([]domain.TireItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tires := make([]domain.TireItem, 0, 16)
	for _, tire := range s.tiresByID {
		if tire.Quantity < threshold {
			tires = append(tires, s.withSupplierName(tire))
		}
	}
	slices.SortFunc(tires, func(a, b domain.TireItem) int {
		if a.Quantity == b.Quantity {
			return int(a.ID - b.ID)
		}
		return a.Quantity - b.Quantity
	})
	return tires, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}

	s.nextSupplierID++
	supplier.ID = s.nextSupplierID
	s.suppliersByID[supplier.ID] = supplier
	copySupplier := supplier
	return &copySupplier, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliersByID))
	for _, supplier := range s.suppliersByID {
		suppliers = append(suppliers, supplier)
	}
	slices.SortFunc(suppliers, func(a, b domain.Supplier) int {
		return int(a.ID - b.ID)
	})
	return suppliers, nil
}

func (s *Store) GetSupplier(_ context.Context, id int64) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, exists := s.suppliersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySupplier := supplier
	return &copySupplier, nil
}

// CreateSale performs the full sale flow under one lock: existence and stock
// checks, price and cost snapshots, discount arithmetic, invoice id
// allocation, and stock decrements. Any failure leaves the store untouched.
func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sale.Items) == 0 || !domain.IsPaymentMode(sale.PaymentMode) {
		return nil, store.ErrInvalidInput
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}

	subtotal := 0.0
	priced := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return nil, store.ErrInvalidInput
		}
		tire, exists := s.tiresByID[item.TireID]
		if !exists {
			return nil, store.ErrNotFound
		}
		if tire.Quantity < item.Quantity {
			return nil, store.ErrInsufficientStock
		}
		line := domain.SaleItem{
			TireID:     item.TireID,
			Quantity:   item.Quantity,
			UnitPrice:  tire.SellingPrice,
			UnitCost:   tire.PurchasePrice,
			TotalPrice: float64(item.Quantity) * tire.SellingPrice,
			TireBrand:  tire.Brand,
			TireSize:   tire.TireSize,
		}
		priced = append(priced, line)
		subtotal += line.TotalPrice
	}

	discount, err := store.ComputeDiscount(sale.DiscountType, sale.DiscountValue, subtotal)
	if err != nil {
		return nil, err
	}

	invoiceID, err := store.NextInvoiceID(s.lastInvoiceIDLocked(sale.SaleDate), sale.SaleDate)
	if err != nil {
		return nil, err
	}

	s.nextSaleID++
	sale.ID = s.nextSaleID
	sale.InvoiceID = invoiceID
	sale.Subtotal = subtotal
	sale.DiscountAmount = discount
	sale.TotalAmount = subtotal - discount
	for i := range priced {
		s.nextSaleItemID++
		priced[i].ID = s.nextSaleItemID
	}
	sale.Items = priced

	for _, item := range sale.Items {
		tire := s.tiresByID[item.TireID]
		tire.Quantity -= item.Quantity
		s.tiresByID[item.TireID] = tire
	}

	saved := cloneSale(&sale)
	s.salesByID[sale.ID] = saved
	return cloneSale(saved), nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) GetSaleByInvoiceID(_ context.Context, invoiceID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sale := range s.salesByID {
		if sale.InvoiceID == invoiceID {
			return cloneSale(sale), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListSales(_ context.Context, skip int, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		sales = append(sales, *cloneSale(sale))
	}
	sortSalesDesc(sales)
	return paginate(sales, skip, limit), nil
}

func (s *Store) ListSalesByDateRange(_ context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, 32)
	for _, sale := range s.salesByID {
		if sale.SaleDate.Before(from) || !sale.SaleDate.Before(to) {
			continue
		}
		sales = append(sales, *cloneSale(sale))
	}
	sortSalesDesc(sales)
	return sales, nil
}

// CreatePurchase persists the purchase and increments stock under one lock.
func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(purchase.SupplierName) == "" || len(purchase.Items) == 0 {
		return nil, store.ErrInvalidInput
	}
	if purchase.PaymentStatus == "" {
		purchase.PaymentStatus = domain.PaymentStatusPaid
	}
	if !domain.IsPaymentStatus(purchase.PaymentStatus) {
		return nil, store.ErrInvalidInput
	}
	if purchase.PurchaseDate.IsZero() {
		purchase.PurchaseDate = time.Now().UTC()
	}

	total := 0.0
	items := make([]domain.PurchaseItem, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		if item.Quantity < 1 || item.PurchasePrice < 0 {
			return nil, store.ErrInvalidInput
		}
		tire, exists := s.tiresByID[item.TireID]
		if !exists {
			return nil, store.ErrNotFound
		}
		item.TotalPrice = float64(item.Quantity) * item.PurchasePrice
		item.TireBrand = tire.Brand
		item.TireSize = tire.TireSize
		items = append(items, item)
		total += item.TotalPrice
	}

	s.nextPurchaseID++
	purchase.ID = s.nextPurchaseID
	purchase.TotalAmount = total
	for i := range items {
		s.nextPurchItmID++
		items[i].ID = s.nextPurchItmID
	}
	purchase.Items = items

	for _, item := range purchase.Items {
		tire := s.tiresByID[item.TireID]
		tire.Quantity += item.Quantity
		s.tiresByID[item.TireID] = tire
	}

	saved := clonePurchase(&purchase)
	s.purchasesByID[purchase.ID] = saved
	return clonePurchase(saved), nil
}

func (s *Store) GetPurchase(_ context.Context, id int64) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchase, exists := s.purchasesByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return clonePurchase(purchase), nil
}

func (s *Store) ListPurchases(_ context.Context, skip int, limit int) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]domain.Purchase, 0, len(s.purchasesByID))
	for _, purchase := range s.purchasesByID {
		purchases = append(purchases, *clonePurchase(purchase))
	}
	slices.SortFunc(purchases, func(a, b domain.Purchase) int {
		if a.PurchaseDate.Equal(b.PurchaseDate) {
			return int(b.ID - a.ID)
		}
		if a.PurchaseDate.After(b.PurchaseDate) {
			return -1
		}
		return 1
	})
	return paginate(purchases, skip, limit), nil
}

func (s *Store) UpdatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.purchasesByID[purchase.ID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if strings.TrimSpace(purchase.SupplierName) == "" || !domain.IsPaymentStatus(purchase.PaymentStatus) {
		return nil, store.ErrInvalidInput
	}

	existing.SupplierName = purchase.SupplierName
	existing.PaymentStatus = purchase.PaymentStatus
	if !purchase.PurchaseDate.IsZero() {
		existing.PurchaseDate = purchase.PurchaseDate
	}
	return clonePurchase(existing), nil
}

func (s *Store) DeletePurchase(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.purchasesByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.purchasesByID, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrConflict
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByUsername[strings.ToLower(strings.TrimSpace(username))]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyUser := user
	return &copyUser, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// lastInvoiceIDLocked returns the highest invoice id already allocated for
// the given day. Caller must hold the write lock.
func (s *Store) lastInvoiceIDLocked(at time.Time) string {
	prefix := store.InvoiceDayPrefix(at)
	last := ""
	for _, sale := range s.salesByID {
		if strings.HasPrefix(sale.InvoiceID, prefix) {
			last = store.LaterInvoiceID(last, sale.InvoiceID)
		}
	}
	return last
}

func (s *Store) withSupplierName(tire domain.TireItem) domain.TireItem {
	if tire.SupplierID != nil {
		if supplier, ok := s.suppliersByID[*tire.SupplierID]; ok {
			tire.SupplierName = supplier.Name
		}
	}
	return tire
}

func sortSalesDesc(sales []domain.Sale) {
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.SaleDate.Equal(b.SaleDate) {
			return int(b.ID - a.ID)
		}
		if a.SaleDate.After(b.SaleDate) {
			return -1
		}
		return 1
	})
}

func paginate[T any](items []T, skip int, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	items := make([]domain.SaleItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return &dup
}

func clonePurchase(src *domain.Purchase) *domain.Purchase {
	if src == nil {
		return nil
	}
	dup := *src
	items := make([]domain.PurchaseItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return &dup
}
