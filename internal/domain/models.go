package domain

import "time"

const (
	TireTypeTube     = "tube"
	TireTypeTubeless = "tubeless"
)

const (
	PaymentModeCash = "cash"
	PaymentModeUPI  = "upi"
	PaymentModeCard = "card"
)

const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
)

const (
	DiscountTypeFlat    = "flat"
	DiscountTypePercent = "percent"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type TireItem struct {
	ID            int64     `json:"id"`
	Brand         string    `json:"brand"`
	TireSize      string    `json:"tire_size"`
	TireType      string    `json:"tire_type"`
	Quantity      int       `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	SellingPrice  float64   `json:"selling_price"`
	SupplierID    *int64    `json:"supplier_id,omitempty"`
	SupplierName  string    `json:"supplier_name,omitempty"`
	PurchaseDate  time.Time `json:"purchase_date"`
}

type TireCreateRequest struct {
	Brand         string  `json:"brand"`
	TireSize      string  `json:"tire_size"`
	TireType      string  `json:"tire_type"`
	Quantity      int     `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	SellingPrice  float64 `json:"selling_price"`
	SupplierID    *int64  `json:"supplier_id,omitempty"`
	PurchaseDate  string  `json:"purchase_date,omitempty"`
}

type TireUpdateRequest struct {
	Brand         *string  `json:"brand,omitempty"`
	TireSize      *string  `json:"tire_size,omitempty"`
	TireType      *string  `json:"tire_type,omitempty"`
	Quantity      *int     `json:"quantity,omitempty"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	SellingPrice  *float64 `json:"selling_price,omitempty"`
	SupplierID    *int64   `json:"supplier_id,omitempty"`
	PurchaseDate  *string  `json:"purchase_date,omitempty"`
}

type Supplier struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
}

type SupplierCreateRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type SaleItemRequest struct {
	TireID   int64 `json:"tire_id"`
	Quantity int   `json:"quantity"`
}

type SaleCreateRequest struct {
	CustomerName   string            `json:"customer_name"`
	CustomerMobile string            `json:"customer_mobile"`
	PaymentMode    string            `json:"payment_mode"`
	Items          []SaleItemRequest `json:"items"`
	DiscountType   string            `json:"discount_type,omitempty"`
	DiscountValue  float64           `json:"discount_value,omitempty"`
	Notes          string            `json:"notes,omitempty"`
}

// SaleItem carries the unit price and unit cost captured when the sale was
// recorded, so later edits to the tire never rewrite historical totals or
// profit.
type SaleItem struct {
	ID         int64   `json:"id"`
	TireID     int64   `json:"tire_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	UnitCost   float64 `json:"-"`
	TotalPrice float64 `json:"total_price"`
	TireBrand  string  `json:"tire_brand"`
	TireSize   string  `json:"tire_size"`
}

type Sale struct {
	ID             int64      `json:"id"`
	InvoiceID      string     `json:"invoice_id"`
	CustomerName   string     `json:"customer_name"`
	CustomerMobile string     `json:"customer_mobile"`
	Subtotal       float64    `json:"subtotal"`
	DiscountType   string     `json:"discount_type,omitempty"`
	DiscountValue  float64    `json:"discount_value"`
	DiscountAmount float64    `json:"discount_amount"`
	TotalAmount    float64    `json:"total_amount"`
	Notes          string     `json:"notes,omitempty"`
	PaymentMode    string     `json:"payment_mode"`
	SaleDate       time.Time  `json:"sale_date"`
	Items          []SaleItem `json:"items"`
}

type PurchaseItemRequest struct {
	TireID        int64   `json:"tire_id"`
	Quantity      int     `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
}

type PurchaseCreateRequest struct {
	SupplierName  string                `json:"supplier_name"`
	PurchaseDate  string                `json:"purchase_date,omitempty"`
	PaymentStatus string                `json:"payment_status,omitempty"`
	Items         []PurchaseItemRequest `json:"items"`
}

type PurchaseUpdateRequest struct {
	SupplierName  *string `json:"supplier_name,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
	PurchaseDate  *string `json:"purchase_date,omitempty"`
}

type PurchaseItem struct {
	ID            int64   `json:"id"`
	TireID        int64   `json:"tire_id"`
	Quantity      int     `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	TotalPrice    float64 `json:"total_price"`
	TireBrand     string  `json:"tire_brand"`
	TireSize      string  `json:"tire_size"`
}

type Purchase struct {
	ID            int64          `json:"id"`
	SupplierName  string         `json:"supplier_name"`
	TotalAmount   float64        `json:"total_amount"`
	PurchaseDate  time.Time      `json:"purchase_date"`
	PaymentStatus string         `json:"payment_status"`
	Items         []PurchaseItem `json:"items"`
}

type ProfitSummary struct {
	DailyProfit   float64 `json:"daily_profit"`
	MonthlyProfit float64 `json:"monthly_profit"`
	TotalProfit   float64 `json:"total_profit"`
}

type SaleProfitDetail struct {
	SaleID       int64   `json:"sale_id"`
	InvoiceID    string  `json:"invoice_id"`
	CustomerName string  `json:"customer_name"`
	TotalAmount  float64 `json:"total_amount"`
	TotalCost    float64 `json:"total_cost"`
	Profit       float64 `json:"profit"`
	SaleDate     string  `json:"sale_date"`
}

type DailyClosingReport struct {
	Date              string  `json:"date"`
	TotalSales        float64 `json:"total_sales"`
	TotalProfit       float64 `json:"total_profit"`
	CashSales         float64 `json:"cash_sales"`
	UPISales          float64 `json:"upi_sales"`
	CardSales         float64 `json:"card_sales"`
	TotalItemsSold    int     `json:"total_items_sold"`
	TotalTransactions int     `json:"total_transactions"`
}

type LowStockItem struct {
	ID       int64  `json:"id"`
	Brand    string `json:"brand"`
	TireSize string `json:"tire_size"`
	Quantity int    `json:"quantity"`
}

type SalesChartPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type DashboardSummary struct {
	TotalSalesToday     float64 `json:"total_sales_today"`
	TotalMonthlyRevenue float64 `json:"total_monthly_revenue"`
	LowStockCount       int     `json:"low_stock_count"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
	TotalItems          int     `json:"total_items"`
	DailyProfit         float64 `json:"daily_profit"`
	MonthlyProfit       float64 `json:"monthly_profit"`
}

type DashboardResponse struct {
	Summary       DashboardSummary  `json:"summary"`
	LowStockItems []LowStockItem    `json:"low_stock_items"`
	SalesChart    []SalesChartPoint `json:"sales_chart"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// StockAdjustRequest is a manual stock correction; delta may be negative.
type StockAdjustRequest struct {
	Delta int `json:"delta"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type Actor struct {
	Username string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	FullName  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type WhatsAppSendRequest struct {
	// Mobile overrides the number stored on the sale when set.
	Mobile string `json:"mobile,omitempty"`
}

type WhatsAppSendResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	MessageSID string `json:"message_sid,omitempty"`
}

func IsTireType(value string) bool {
	return value == TireTypeTube || value == TireTypeTubeless
}

func IsPaymentMode(value string) bool {
	switch value {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard:
		return true
	}
	return false
}

func IsPaymentStatus(value string) bool {
	return value == PaymentStatusPaid || value == PaymentStatusPending
}

func IsDiscountType(value string) bool {
	return value == DiscountTypeFlat || value == DiscountTypePercent
}
