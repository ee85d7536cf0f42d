package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the order state machine. Completed and cancelled are
// terminal; once reached no further transition is applied.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order is a committed checkout (the "transaction" of the storefront).
// Created atomically with its items; immutable afterwards except for Status
// and payment metadata.
type Order struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount     float64        `gorm:"not null" json:"total_amount"`
	ShippingCost    float64        `gorm:"not null;default:0" json:"shipping_cost"`
	DiscountAmount  float64        `gorm:"not null;default:0" json:"discount_amount"`
	VoucherCode     *string        `gorm:"type:varchar(64)" json:"voucher_code,omitempty"`
	PaymentMethod   string         `gorm:"type:varchar(50)" json:"payment_method"`
	ShippingAddress string         `gorm:"type:text" json:"shipping_address"`
	Status          OrderStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentToken    string         `gorm:"type:varchar(128)" json:"payment_token,omitempty"`
	PaymentURL      string         `gorm:"type:text" json:"payment_url,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	CancelledAt     *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Items           []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one order line. Price is the product price snapshotted at
// commit time, immune to later catalog changes. Never mutated.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
}

// Order tables keep the storefront's historical names.
func (Order) TableName() string     { return "transactions" }
func (OrderItem) TableName() string { return "transaction_details" }
