package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tirehub/backend/internal/domain"
	"tirehub/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const tireColumns = `
	t.id, t.brand, t.tire_size, t.tire_type, t.quantity,
	t.purchase_price, t.selling_price, t.supplier_id, COALESCE(sp.name, ''), t.purchase_date
`

func (s *Store) ListTires(ctx context.Context, skip int, limit int, search string) ([]domain.TireItem, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = 100
	}
	search = strings.TrimSpace(search)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tireColumns+`
		FROM tires t
		LEFT JOIN suppliers sp ON sp.id = t.supplier_id
		WHERE ($1 = '' OR t.brand ILIKE '%' || $1 || '%' OR t.tire_size ILIKE '%' || $1 || '%')
		ORDER BY t.id
		OFFSET $2 LIMIT $3
	`, search, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tires := make([]domain.TireItem, 0, limit)
	for rows.Next() {
		tire, err := scanTire(rows)
		if err != nil {
			return nil, err
		}
		tires = append(tires, tire)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tires, nil
}

func (s *Store) GetTire(ctx context.Context, id int64) (*domain.TireItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tireColumns+`
		FROM tires t
		LEFT JOIN suppliers sp ON sp.id = t.supplier_id
		WHERE t.id = $1
	`, id)
	tire, err := scanTire(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &tire, nil
}

func (s *Store) CreateTire(ctx context.Context, tire domain.TireItem) (*domain.TireItem, error) {
	if tire.Brand == "" || tire.TireSize == "" || !domain.IsTireType(tire.TireType) {
		return nil, store.ErrInvalidInput
	}
	if tire.Quantity < 0 || tire.PurchasePrice < 0 || tire.SellingPrice < 0 {
		return nil, store.ErrInvalidInput
	}
	if tire.PurchaseDate.IsZero() {
		tire.PurchaseDate = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tires (brand, tire_size, tire_type, quantity, purchase_price, selling_price, supplier_id, purchase_date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),now())
		RETURNING id
	`, tire.Brand, tire.TireSize, tire.TireType, tire.Quantity, tire.PurchasePrice, tire.SellingPrice, nullInt64(tire.SupplierID), tire.PurchaseDate).Scan(&tire.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return s.GetTire(ctx, tire.ID)
}

func (s *Store) UpdateTire(ctx context.Context, tire domain.TireItem) (*domain.TireItem, error) {
	if tire.Brand == "" || tire.TireSize == "" || !domain.IsTireType(tire.TireType) {
		return nil, store.ErrInvalidInput
	}
	if tire.Quantity < 0 || tire.PurchasePrice < 0 || tire.SellingPrice < 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tires
		SET brand = $2, tire_size = $3, tire_type = $4, quantity = $5,
			purchase_price = $6, selling_price = $7, supplier_id = $8,
			purchase_date = $9, updated_at = now()
		WHERE id = $1
	`, tire.ID, tire.Brand, tire.TireSize, tire.TireType, tire.Quantity, tire.PurchasePrice, tire.SellingPrice, nullInt64(tire.SupplierID), tire.PurchaseDate)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetTire(ctx, tire.ID)
}

func (s *Store) DeleteTire(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tires
		WHERE id = $1
	`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AdjustTireQuantity(ctx context.Context, id int64, delta int) (*domain.TireItem, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tires
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1 AND quantity + $2 >= 0
	`, id, delta)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, getErr := s.GetTire(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, store.ErrInsufficientStock
	}
	return s.GetTire(ctx, id)
}

func (s *Store) ListLowStockTires(ctx context.Context, threshold int) ([]domain.TireItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tireColumns+`
		FROM tires t
		LEFT JOIN suppliers sp ON sp.id = t.supplier_id
		WHERE t.quantity < $1
		ORDER BY t.quantity, t.id
	`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tires := make([]domain.TireItem, 0, 16)
	for rows.Next() {
		tire, err := scanTire(rows)
		if err != nil {
			return nil, err
		}
		tires = append(tires, tire)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tires, nil
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suppliers (name, contact_person, phone, email, address, created_at)
		VALUES ($1,$2,$3,$4,$5,now())
		RETURNING id
	`, supplier.Name, supplier.ContactPerson, supplier.Phone, supplier.Email, supplier.Address).Scan(&supplier.ID)
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact_person, phone, email, address
		FROM suppliers
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 32)
	for rows.Next() {
		var sp domain.Supplier
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.ContactPerson, &sp.Phone, &sp.Email, &sp.Address); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *Store) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	var sp domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact_person, phone, email, address
		FROM suppliers
		WHERE id = $1
	`, id).Scan(&sp.ID, &sp.Name, &sp.ContactPerson, &sp.Phone, &sp.Email, &sp.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// CreateSale runs the entire sale flow in one serializable transaction:
// row-locked stock checks, price and cost snapshots, discount arithmetic,
// invoice id allocation, sale + item inserts, and guarded stock decrements.
// The whole transaction is retried when a concurrent writer takes the same
// invoice id or trips serialization.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Items) == 0 || !domain.IsPaymentMode(sale.PaymentMode) {
		return nil, store.ErrInvalidInput
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}

	var created *domain.Sale
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		created, err = s.createSaleOnce(ctx, sale)
		if err == nil {
			return created, nil
		}
		if !isUniqueViolation(err) && !isSerializationFailure(err) {
			return nil, err
		}
	}
	return nil, err
}

func (s *Store) createSaleOnce(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tireIDs := uniqueTireIDs(sale.Items)
	if len(tireIDs) == 0 {
		return nil, store.ErrInvalidInput
	}

	tireRows, err := pgTx.QueryContext(ctx, `
		SELECT id, brand, tire_size, quantity, purchase_price, selling_price
		FROM tires
		WHERE id = ANY($1)
		FOR UPDATE
	`, tireIDs)
	if err != nil {
		return nil, err
	}
	tireMap := make(map[int64]domain.TireItem, len(tireIDs))
	for tireRows.Next() {
		var tire domain.TireItem
		if err := tireRows.Scan(&tire.ID, &tire.Brand, &tire.TireSize, &tire.Quantity, &tire.PurchasePrice, &tire.SellingPrice); err != nil {
			_ = tireRows.Close()
			return nil, err
		}
		tireMap[tire.ID] = tire
	}
	if err := tireRows.Err(); err != nil {
		_ = tireRows.Close()
		return nil, err
	}
	_ = tireRows.Close()

	subtotal := 0.0
	priced := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.Quantity < 1 {
			return nil, store.ErrInvalidInput
		}
		tire, exists := tireMap[item.TireID]
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

	// Ordered by length first so the sequence keeps counting once the
	// suffix widens past four digits.
	var lastInvoiceID string
	err = pgTx.QueryRowContext(ctx, `
		SELECT invoice_id
		FROM sales
		WHERE invoice_id LIKE $1 || '%'
		ORDER BY length(invoice_id) DESC, invoice_id DESC
		LIMIT 1
	`, store.InvoiceDayPrefix(sale.SaleDate)).Scan(&lastInvoiceID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	invoiceID, err := store.NextInvoiceID(lastInvoiceID, sale.SaleDate)
	if err != nil {
		return nil, err
	}

	sale.InvoiceID = invoiceID
	sale.Subtotal = subtotal
	sale.DiscountAmount = discount
	sale.TotalAmount = subtotal - discount

	err = pgTx.QueryRowContext(ctx, `
		INSERT INTO sales (
			invoice_id, customer_name, customer_mobile, subtotal,
			discount_type, discount_value, discount_amount, total_amount,
			notes, payment_mode, sale_date, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
		RETURNING id
	`, sale.InvoiceID, sale.CustomerName, sale.CustomerMobile, sale.Subtotal,
		nullIfEmpty(sale.DiscountType), sale.DiscountValue, sale.DiscountAmount, sale.TotalAmount,
		strings.TrimSpace(sale.Notes), sale.PaymentMode, sale.SaleDate).Scan(&sale.ID)
	if err != nil {
		return nil, err
	}

	for i := range priced {
		err := pgTx.QueryRowContext(ctx, `
			INSERT INTO sale_items (sale_id, tire_id, quantity, unit_price, unit_cost, total_price, tire_brand, tire_size)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id
		`, sale.ID, priced[i].TireID, priced[i].Quantity, priced[i].UnitPrice, priced[i].UnitCost,
			priced[i].TotalPrice, priced[i].TireBrand, priced[i].TireSize).Scan(&priced[i].ID)
		if err != nil {
			return nil, err
		}

		res, err := pgTx.ExecContext(ctx, `
			UPDATE tires
			SET quantity = quantity - $1, updated_at = now()
			WHERE id = $2 AND quantity >= $1
		`, priced[i].Quantity, priced[i].TireID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, store.ErrInsufficientStock
		}
	}
	sale.Items = priced

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &sale, nil
}

const saleColumns = `
	id, invoice_id, customer_name, customer_mobile, subtotal,
	COALESCE(discount_type, ''), discount_value, discount_amount, total_amount,
	COALESCE(notes, ''), payment_mode, sale_date
`

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE id = $1
	`, id)
	return s.scanSaleWithItems(ctx, row)
}

func (s *Store) GetSaleByInvoiceID(ctx context.Context, invoiceID string) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE invoice_id = $1
	`, invoiceID)
	return s.scanSaleWithItems(ctx, row)
}

func (s *Store) ListSales(ctx context.Context, skip int, limit int) ([]domain.Sale, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		ORDER BY sale_date DESC, id DESC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.collectSales(ctx, rows)
}

func (s *Store) ListSalesByDateRange(ctx context.Context, from time.Time, to time.Time) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE sale_date >= $1 AND sale_date < $2
		ORDER BY sale_date DESC, id DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return s.collectSales(ctx, rows)
}

// CreatePurchase persists the purchase with its items and increments stock
// for every line in one serializable transaction.
func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
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

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tireIDs := make([]int64, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		if item.Quantity < 1 || item.PurchasePrice < 0 {
			return nil, store.ErrInvalidInput
		}
		tireIDs = append(tireIDs, item.TireID)
	}

	tireRows, err := pgTx.QueryContext(ctx, `
		SELECT id, brand, tire_size
		FROM tires
		WHERE id = ANY($1)
		FOR UPDATE
	`, tireIDs)
	if err != nil {
		return nil, err
	}
	tireMap := make(map[int64]domain.TireItem, len(tireIDs))
	for tireRows.Next() {
		var tire domain.TireItem
		if err := tireRows.Scan(&tire.ID, &tire.Brand, &tire.TireSize); err != nil {
			_ = tireRows.Close()
			return nil, err
		}
		tireMap[tire.ID] = tire
	}
	if err := tireRows.Err(); err != nil {
		_ = tireRows.Close()
		return nil, err
	}
	_ = tireRows.Close()

	total := 0.0
	items := make([]domain.PurchaseItem, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		tire, exists := tireMap[item.TireID]
		if !exists {
			return nil, store.ErrNotFound
		}
		item.TotalPrice = float64(item.Quantity) * item.PurchasePrice
		item.TireBrand = tire.Brand
		item.TireSize = tire.TireSize
		items = append(items, item)
		total += item.TotalPrice
	}
	purchase.TotalAmount = total

	err = pgTx.QueryRowContext(ctx, `
		INSERT INTO purchases (supplier_name, total_amount, purchase_date, payment_status, created_at)
		VALUES ($1,$2,$3,$4,now())
		RETURNING id
	`, purchase.SupplierName, purchase.TotalAmount, purchase.PurchaseDate, purchase.PaymentStatus).Scan(&purchase.ID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		err := pgTx.QueryRowContext(ctx, `
			INSERT INTO purchase_items (purchase_id, tire_id, quantity, purchase_price, total_price, tire_brand, tire_size)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`, purchase.ID, items[i].TireID, items[i].Quantity, items[i].PurchasePrice,
			items[i].TotalPrice, items[i].TireBrand, items[i].TireSize).Scan(&items[i].ID)
		if err != nil {
			return nil, err
		}

		_, err = pgTx.ExecContext(ctx, `
			UPDATE tires
			SET quantity = quantity + $1, updated_at = now()
			WHERE id = $2
		`, items[i].Quantity, items[i].TireID)
		if err != nil {
			return nil, err
		}
	}
	purchase.Items = items

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *Store) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := s.db.QueryRowContext(ctx, `
		SELECT id, supplier_name, total_amount, purchase_date, payment_status
		FROM purchases
		WHERE id = $1
	`, id).Scan(&purchase.ID, &purchase.SupplierName, &purchase.TotalAmount, &purchase.PurchaseDate, &purchase.PaymentStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	purchase.PurchaseDate = purchase.PurchaseDate.UTC()

	itemsByPurchase, err := s.purchaseItems(ctx, []int64{purchase.ID})
	if err != nil {
		return nil, err
	}
	purchase.Items = itemsByPurchase[purchase.ID]
	if purchase.Items == nil {
		purchase.Items = []domain.PurchaseItem{}
	}
	return &purchase, nil
}

func (s *Store) ListPurchases(ctx context.Context, skip int, limit int) ([]domain.Purchase, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, supplier_name, total_amount, purchase_date, payment_status
		FROM purchases
		ORDER BY purchase_date DESC, id DESC
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, limit)
	ids := make([]int64, 0, limit)
	for rows.Next() {
		var purchase domain.Purchase
		if err := rows.Scan(&purchase.ID, &purchase.SupplierName, &purchase.TotalAmount, &purchase.PurchaseDate, &purchase.PaymentStatus); err != nil {
			return nil, err
		}
		purchase.PurchaseDate = purchase.PurchaseDate.UTC()
		purchases = append(purchases, purchase)
		ids = append(ids, purchase.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemsByPurchase, err := s.purchaseItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range purchases {
		purchases[i].Items = itemsByPurchase[purchases[i].ID]
		if purchases[i].Items == nil {
			purchases[i].Items = []domain.PurchaseItem{}
		}
	}
	return purchases, nil
}

func (s *Store) UpdatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if strings.TrimSpace(purchase.SupplierName) == "" || !domain.IsPaymentStatus(purchase.PaymentStatus) {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE purchases
		SET supplier_name = $2, payment_status = $3,
			purchase_date = COALESCE($4, purchase_date)
		WHERE id = $1
	`, purchase.ID, purchase.SupplierName, purchase.PaymentStatus, nullTime(zeroTimePtr(purchase.PurchaseDate)))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetPurchase(ctx, purchase.ID)
}

func (s *Store) DeletePurchase(ctx context.Context, id int64) error {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = pgTx.Rollback() }()

	if _, err := pgTx.ExecContext(ctx, `
		DELETE FROM purchase_items
		WHERE purchase_id = $1
	`, id); err != nil {
		return err
	}

	res, err := pgTx.ExecContext(ctx, `
		DELETE FROM purchases
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return pgTx.Commit()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, full_name, role, active, created_at)
		VALUES ($1,$2,$3,$4,true,$5)
	`, username, user.Password, user.FullName, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, COALESCE(full_name, ''), role, active, created_at
		FROM users
		WHERE username = $1
	`, strings.ToLower(strings.TrimSpace(username))).Scan(&user.Username, &user.Password, &user.FullName, &user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, COALESCE(full_name, ''), role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.FullName, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password = $2
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTire(row rowScanner) (domain.TireItem, error) {
	var tire domain.TireItem
	var supplierID sql.NullInt64
	err := row.Scan(&tire.ID, &tire.Brand, &tire.TireSize, &tire.TireType, &tire.Quantity,
		&tire.PurchasePrice, &tire.SellingPrice, &supplierID, &tire.SupplierName, &tire.PurchaseDate)
	if err != nil {
		return domain.TireItem{}, err
	}
	if supplierID.Valid {
		id := supplierID.Int64
		tire.SupplierID = &id
	}
	tire.PurchaseDate = tire.PurchaseDate.UTC()
	return tire, nil
}

func scanSale(row rowScanner) (domain.Sale, error) {
	var sale domain.Sale
	err := row.Scan(&sale.ID, &sale.InvoiceID, &sale.CustomerName, &sale.CustomerMobile, &sale.Subtotal,
		&sale.DiscountType, &sale.DiscountValue, &sale.DiscountAmount, &sale.TotalAmount,
		&sale.Notes, &sale.PaymentMode, &sale.SaleDate)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.SaleDate = sale.SaleDate.UTC()
	return sale, nil
}

func (s *Store) scanSaleWithItems(ctx context.Context, row rowScanner) (*domain.Sale, error) {
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	itemsBySale, err := s.saleItems(ctx, []int64{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Items = itemsBySale[sale.ID]
	if sale.Items == nil {
		sale.Items = []domain.SaleItem{}
	}
	return &sale, nil
}

func (s *Store) collectSales(ctx context.Context, rows *sql.Rows) ([]domain.Sale, error) {
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	ids := make([]int64, 0, 64)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemsBySale, err := s.saleItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = itemsBySale[sales[i].ID]
		if sales[i].Items == nil {
			sales[i].Items = []domain.SaleItem{}
		}
	}
	return sales, nil
}

func (s *Store) saleItems(ctx context.Context, saleIDs []int64) (map[int64][]domain.SaleItem, error) {
	result := make(map[int64][]domain.SaleItem, len(saleIDs))
	if len(saleIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, tire_id, quantity, unit_price, unit_cost, total_price, tire_brand, tire_size
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY id
	`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SaleItem
		var saleID int64
		if err := rows.Scan(&item.ID, &saleID, &item.TireID, &item.Quantity, &item.UnitPrice, &item.UnitCost, &item.TotalPrice, &item.TireBrand, &item.TireSize); err != nil {
			return nil, err
		}
		result[saleID] = append(result[saleID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) purchaseItems(ctx context.Context, purchaseIDs []int64) (map[int64][]domain.PurchaseItem, error) {
	result := make(map[int64][]domain.PurchaseItem, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, purchase_id, tire_id, quantity, purchase_price, total_price, tire_brand, tire_size
		FROM purchase_items
		WHERE purchase_id = ANY($1)
		ORDER BY id
	`, purchaseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.PurchaseItem
		var purchaseID int64
		if err := rows.Scan(&item.ID, &purchaseID, &item.TireID, &item.Quantity, &item.PurchasePrice, &item.TotalPrice, &item.TireBrand, &item.TireSize); err != nil {
			return nil, err
		}
		result[purchaseID] = append(result[purchaseID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func uniqueTireIDs(items []domain.SaleItem) []int64 {
	set := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.TireID < 1 {
			continue
		}
		set[item.TireID] = struct{}{}
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullInt64(val *int64) any {
	if val == nil {
		return nil
	}
	return *val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}

func zeroTimePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
