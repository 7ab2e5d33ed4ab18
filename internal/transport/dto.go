package transport

import (
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity" validate:"min=1,max=1000"`
}

type CreateOrderRequest struct {
	CustomerName  string             `json:"customer_name"  validate:"required,max=255"`
	CustomerEmail string             `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone *string            `json:"customer_phone" validate:"omitnil,max=50"`
	Notes         *string            `json:"notes"`
	Items         []OrderItemRequest `json:"items"          validate:"required,min=1,dive"`
}

// UpdateOrderRequest is a partial update. Nil fields are left unchanged; a
// non-nil Items replaces the whole item set.
type UpdateOrderRequest struct {
	CustomerName  *string             `json:"customer_name"  validate:"omitnil,required,max=255"`
	CustomerEmail *string             `json:"customer_email" validate:"omitnil,required,email,max=255"`
	CustomerPhone *string             `json:"customer_phone" validate:"omitnil,max=50"`
	Notes         *string             `json:"notes"`
	Items         *[]OrderItemRequest `json:"items"          validate:"omitnil,min=1,dive"`
}

type ReplaceItemsRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity" validate:"min=1,max=1000"`
}

type ItemPatchRequest struct {
	Name     *string          `json:"name"     validate:"omitnil,required,max=255"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity" validate:"omitnil,min=1,max=1000"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ListOrdersQuery struct {
	Status  string
	Q       string
	Page    int
	PerPage int
}

type OrderItemResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID *uuid.UUID `json:"product_id"`
	Name      string     `json:"name"`
	Price     string     `json:"price"`
	Quantity  int        `json:"quantity"`
	LineTotal string     `json:"line_total"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	UserID        *uuid.UUID          `json:"user_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone *string             `json:"customer_phone"`
	Status        models.Status       `json:"status"`
	Notes         *string             `json:"notes"`
	TotalPrice    string              `json:"total_price"`
	ItemsCount    int                 `json:"items_count"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Data []OrderResponse `json:"data"`
	Meta util.Meta       `json:"meta"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     pricing.Format(it.Price),
			Quantity:  it.Quantity,
			LineTotal: pricing.Format(it.LineTotal),
		})
	}
	return OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		Status:        o.Status,
		Notes:         o.Notes,
		TotalPrice:    pricing.Format(o.TotalPrice),
		ItemsCount:    len(items),
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

type CreateProductRequest struct {
	Name        string           `json:"name"        validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"       validate:"required"`
	SKU         *string          `json:"sku"         validate:"omitnil,required,max=64"`
	IsActive    *bool            `json:"is_active"`
	Stock       int              `json:"stock"       validate:"min=0"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"        validate:"omitnil,required,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	SKU         *string          `json:"sku"         validate:"omitnil,max=64"`
	IsActive    *bool            `json:"is_active"`
	Stock       *int             `json:"stock"       validate:"omitnil,min=0"`
}

type ListProductsQuery struct {
	Q          string
	Sort       string
	Page       int
	PerPage    int
	ActiveOnly bool
}

type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	SKU         *string   `json:"sku"`
	IsActive    bool      `json:"is_active"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductListResponse struct {
	Data []ProductResponse `json:"data"`
	Meta util.Meta         `json:"meta"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       pricing.Format(p.Price),
		SKU:         p.SKU,
		IsActive:    p.IsActive,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ContactMessageRequest struct {
	Name    string `json:"name"    validate:"required,max=255"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

type SetProcessedRequest struct {
	Processed *bool `json:"processed" validate:"required"`
}

type ListContactMessagesQuery struct {
	Processed string
	Q         string
	Page      int
	PerPage   int
}

type ContactMessageResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Body        string     `json:"body"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ContactMessageListResponse struct {
	Data []ContactMessageResponse `json:"data"`
	Meta util.Meta                `json:"meta"`
}

func NewContactMessageResponse(m *models.ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Body:        m.Body,
		Processed:   m.Processed,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
	}
}
