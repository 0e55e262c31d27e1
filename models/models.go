package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// --- Custom JSON Type for database/sql ---

// JSONB allows storing JSON data in a PostgreSQL jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, &j)
}

// --- JWT & Auth ---

type JwtClaims struct {
	UserID string `json:"userId"`
	ShopID string `json:"shopId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Core Models ---

// User represents a pharmacy user (owner, pharmacist, or admin).
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ShopID    *string   `json:"shop_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shop represents a single pharmacy location.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	GSTIN     *string   `json:"gstin,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Supplier provides medicines to a pharmacy.
type Supplier struct {
	ID           string    `json:"id"`
	ShopID       string    `json:"shop_id"`
	Name         string    `json:"name"`
	ContactName  *string   `json:"contact_name,omitempty"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Customer represents a walk-in or regular customer of a pharmacy.
type Customer struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shop_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InventoryItem represents a medicine held in a pharmacy's stock.
type InventoryItem struct {
	ID           string     `json:"id"`
	ShopID       string     `json:"shop_id"`
	MedicineName string     `json:"medicine_name"`
	BatchNo      *string    `json:"batch_no,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Quantity     int        `json:"quantity"`
	UnitPrice    float64    `json:"unit_price"`
	SupplierID   *string    `json:"supplier_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// OrderLine is an individual item within an Order, as written by the POS.
type OrderLine struct {
	InventoryItemID string  `json:"inventory_item_id"`
	Name            string  `json:"name"`
	QuantitySold    int     `json:"quantity_sold"`
	Price           float64 `json:"price"`
}

// Order represents a single POS transaction. Items is the raw jsonb payload;
// historical rows may hold a JSON array or a JSON-encoded string of one, so
// it is surfaced unmodified and interpreted where needed.
type Order struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shop_id"`
	CustomerID  *string         `json:"customer_id,omitempty"`
	TotalAmount float64         `json:"total_amount"`
	Items       json.RawMessage `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}

// --- API Request/Response Structs ---

// CreateUserRequest defines the body for creating a new user.
type CreateUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	ShopID   *string `json:"shop_id,omitempty"`
}

// CreateInventoryItemRequest defines the body for adding a medicine.
type CreateInventoryItemRequest struct {
	MedicineName string     `json:"medicine_name"`
	BatchNo      *string    `json:"batch_no,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	Quantity     int        `json:"quantity"`
	UnitPrice    float64    `json:"unit_price"`
	SupplierID   *string    `json:"supplier_id,omitempty"`
}

// CreateSaleRequest defines the body for a POS checkout.
type CreateSaleRequest struct {
	CustomerID *string     `json:"customer_id,omitempty"`
	Items      []OrderLine `json:"items"`
}

// ShopDashboardSummary is the per-shop dashboard widget payload.
type ShopDashboardSummary struct {
	SalesToday        float64 `json:"sales_today"`
	TransactionsToday int     `json:"transactions_today"`
	LowStockItems     int     `json:"low_stock_items"`
	DeadStockItems    int     `json:"dead_stock_items"`
	ExpiringSoonItems int     `json:"expiring_soon_items"`
}

// AIAssistantRequest defines the structure for requests to the AI assistant.
type AIAssistantRequest struct {
	Prompt string `json:"prompt"`
}

// BestSeller represents a best-selling medicine.
type BestSeller struct {
	MedicineName string `json:"medicine_name"`
	TotalSold    int    `json:"total_sold"`
}

// ExpiringBatch represents a batch approaching its expiry date.
type ExpiringBatch struct {
	MedicineName string    `json:"medicine_name"`
	BatchNo      *string   `json:"batch_no,omitempty"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Quantity     int       `json:"quantity"`
}

// --- Paginated Responses ---

// Pagination details for paginated responses.
type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// PaginatedInventoryResponse for inventory items.
type PaginatedInventoryResponse struct {
	Items      []InventoryItem `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// PaginatedOrdersResponse for sales history.
type PaginatedOrdersResponse struct {
	Items      []Order    `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// PaginatedSuppliersResponse for suppliers.
type PaginatedSuppliersResponse struct {
	Data       []Supplier `json:"data"`
	Pagination Pagination `json:"pagination"`
}
