package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentNotification is the audit row written for every processor webhook
// that reaches the reconciliation handler. Replayed deliveries append new
// rows; idempotency is enforced by the conditional status update, not here.
type PaymentNotification struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	TransactionID     string    `gorm:"type:varchar(128)" json:"transaction_id"`
	TransactionStatus string    `gorm:"type:varchar(40);not null" json:"transaction_status"`
	FraudStatus       string    `gorm:"type:varchar(40)" json:"fraud_status"`
	RawPayload        string    `gorm:"type:text" json:"-"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// OrderEvent is published to Kafka (and mirrored to SNS best-effort) on
// order lifecycle changes.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	VoucherCode string    `json:"voucher_code,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	OrderEventCreated   = "order.created"
	OrderEventCompleted = "order.completed"
	OrderEventCancelled = "order.cancelled"
)
