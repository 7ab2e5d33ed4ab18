package models

import (
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func Statuses() []Status {
	return []Status{StatusPending, StatusPaid, StatusCancelled}
}

// StatusList renders the allowed values for error messages.
func StatusList() string {
	names := make([]string, 0, 3)
	for _, s := range Statuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey"               json:"id"`
	UserID        *uuid.UUID      `gorm:"type:char(36);index"                    json:"user_id"`
	CustomerName  string          `gorm:"size:255;not null"                      json:"customer_name"`
	CustomerEmail string          `gorm:"size:255;not null;index"                json:"customer_email"`
	CustomerPhone *string         `gorm:"size:50"                                json:"customer_phone"`
	Status        Status          `gorm:"size:20;not null;default:pending;index" json:"status"`
	Notes         *string         `gorm:"type:text"                              json:"notes"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"  json:"total_price"`
	CreatedAt     time.Time       `gorm:"index"                                  json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Recalculate sets TotalPrice from the line totals of o.Items, which must
// hold the order's complete, already persisted item set.
func (o *Order) Recalculate() decimal.Decimal {
	lines := make([]decimal.Decimal, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, it.LineTotal)
	}
	o.TotalPrice = pricing.Total(lines)
	return o.TotalPrice
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:char(36);primaryKey"             json:"id"`
	OrderID   uuid.UUID       `gorm:"type:char(36);not null;index"         json:"order_id"`
	ProductID *uuid.UUID      `gorm:"type:char(36);index"                  json:"product_id"`
	Name      string          `gorm:"size:255;not null"                    json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"          json:"price"`
	Quantity  int             `gorm:"not null;check:quantity>0"            json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"          json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Reprice rounds the snapshot price and derives LineTotal from it. Call it
// before every insert or update of an item.
func (i *OrderItem) Reprice() {
	i.Price = pricing.Round(i.Price)
	i.LineTotal = pricing.LineTotal(i.Price, i.Quantity)
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey"          json:"id"`
	Name        string          `gorm:"size:255;not null"                 json:"name"`
	Description string          `gorm:"type:text"                         json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"       json:"price"`
	SKU         *string         `gorm:"size:64;uniqueIndex"               json:"sku"`
	IsActive    bool            `gorm:"not null"                          json:"is_active"`
	Stock       int             `gorm:"not null;default:0"                json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type User struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"  json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;not null"         json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"size:16;not null"          json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ContactMessage is a contact-form submission. Admins mark it processed
// once it has been answered.
type ContactMessage struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"       json:"id"`
	Name        string     `gorm:"size:255;not null"              json:"name"`
	Email       string     `gorm:"size:255;not null"              json:"email"`
	Body        string     `gorm:"type:text;not null"             json:"body"`
	Processed   bool       `gorm:"not null;default:false;index"   json:"processed"`
	ProcessedAt *time.Time `json:"processed_at"`
	CreatedAt   time.Time  `gorm:"index"                          json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// All lists the tables owned by this service, in migration order.
func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderItem{}, &ContactMessage{}}
}
