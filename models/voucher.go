package models

import (
	"time"

	"github.com/google/uuid"
)

// VoucherType distinguishes how the voucher benefit is delivered.
type VoucherType string

const (
	VoucherTypeDiscount VoucherType = "discount"
	VoucherTypeCashback VoucherType = "cashback"
)

// VoucherValueType distinguishes how the voucher value is computed.
type VoucherValueType string

const (
	VoucherValuePercentage VoucherValueType = "percentage"
	VoucherValueFixed      VoucherValueType = "fixed"
)

// UnlimitedQuota marks a voucher with no redemption cap.
const UnlimitedQuota = -1

// Voucher is a promotional code. A finite quota is decremented exactly once
// per committed order referencing the code and never goes negative.
type Voucher struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code           string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Type           VoucherType      `gorm:"type:varchar(20);not null" json:"type"`
	ValueType      VoucherValueType `gorm:"type:varchar(20);not null" json:"value_type"`
	Value          float64          `gorm:"not null" json:"value"`
	MinTransaction float64          `gorm:"not null;default:0" json:"min_transaction"`
	MaxLimit       *float64         `json:"max_limit,omitempty"` // caps percentage benefit
	Quota          int              `gorm:"not null;default:-1" json:"quota"`
	ExpiryDate     *time.Time       `json:"expiry_date,omitempty"`
	IsActive       bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasQuota reports whether the voucher can still be redeemed.
func (v *Voucher) HasQuota() bool {
	return v.Quota == UnlimitedQuota || v.Quota > 0
}

// IsExpired reports whether the voucher has passed its expiry date.
func (v *Voucher) IsExpired(now time.Time) bool {
	return v.ExpiryDate != nil && now.After(*v.ExpiryDate)
}

// CreateVoucherRequest is the admin payload for creating a voucher.
type CreateVoucherRequest struct {
	Code           string           `json:"code" binding:"required,min=3,max=64"`
	Type           VoucherType      `json:"type" binding:"required,oneof=discount cashback"`
	ValueType      VoucherValueType `json:"value_type" binding:"required,oneof=percentage fixed"`
	Value          float64          `json:"value" binding:"required,gt=0"`
	MinTransaction float64          `json:"min_transaction" binding:"gte=0"`
	MaxLimit       *float64         `json:"max_limit"`
	Quota          *int             `json:"quota"`
	ExpiryDate     *time.Time       `json:"expiry_date"`
	IsActive       *bool            `json:"is_active"`
}
