package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/middleware"
	"github.com/alvine998/marketplace-backend/models"
	"github.com/alvine998/marketplace-backend/repository"
)

type VoucherController struct {
	vouchers repository.VoucherRepository
}

func NewVoucherController(vouchers repository.VoucherRepository) *VoucherController {
	return &VoucherController{vouchers: vouchers}
}

// ListVouchers returns redeemable vouchers for shoppers. Admins see the full
// catalog, including inactive and exhausted codes.
func (vc *VoucherController) ListVouchers(c *gin.Context) {
	var (
		vouchers []models.Voucher
		err      error
	)
	if middleware.IsAdmin(c) {
		vouchers, err = vc.vouchers.ListAll(c.Request.Context())
	} else {
		vouchers, err = vc.vouchers.ListActive(c.Request.Context(), time.Now())
	}
	if err != nil {
		zap.L().Error("Failed to list vouchers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error retrieving vouchers"})
		return
	}

	c.JSON(http.StatusOK, vouchers)
}

// GetVoucherByCode validates a code for the shopper before checkout.
func (vc *VoucherController) GetVoucherByCode(c *gin.Context) {
	code := c.Param("code")

	voucher, err := vc.vouchers.FindActiveByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Voucher not found or inactive"})
			return
		}
		zap.L().Error("Failed to fetch voucher", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error retrieving voucher"})
		return
	}
	if voucher.IsExpired(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Voucher has expired"})
		return
	}
	if !voucher.HasQuota() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Voucher is out of stock"})
		return
	}

	c.JSON(http.StatusOK, voucher)
}

// CreateVoucher registers a new code. Admin only.
func (vc *VoucherController) CreateVoucher(c *gin.Context) {
	var req models.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	voucher := models.Voucher{
		Code:           req.Code,
		Type:           req.Type,
		ValueType:      req.ValueType,
		Value:          req.Value,
		MinTransaction: req.MinTransaction,
		MaxLimit:       req.MaxLimit,
		Quota:          models.UnlimitedQuota,
		ExpiryDate:     req.ExpiryDate,
		IsActive:       true,
	}
	if req.Quota != nil {
		voucher.Quota = *req.Quota
	}
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive
	}

	if err := vc.vouchers.Create(c.Request.Context(), &voucher); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "Voucher code already exists"})
			return
		}
		zap.L().Error("Failed to create voucher", zap.String("code", req.Code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating voucher"})
		return
	}

	c.JSON(http.StatusCreated, voucher)
}

type updateVoucherRequest struct {
	Value          *float64   `json:"value" binding:"omitempty,gt=0"`
	MinTransaction *float64   `json:"min_transaction" binding:"omitempty,gte=0"`
	MaxLimit       *float64   `json:"max_limit"`
	Quota          *int       `json:"quota"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	IsActive       *bool      `json:"is_active"`
}

// UpdateVoucher patches mutable voucher fields. Admin only. The code, type
// and value type are fixed once the voucher exists so committed orders keep
// pointing at the terms they were priced under.
func (vc *VoucherController) UpdateVoucher(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid voucher ID format"})
		return
	}

	var req updateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	voucher, err := vc.vouchers.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Voucher not found"})
			return
		}
		zap.L().Error("Failed to fetch voucher", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating voucher"})
		return
	}

	if req.Value != nil {
		voucher.Value = *req.Value
	}
	if req.MinTransaction != nil {
		voucher.MinTransaction = *req.MinTransaction
	}
	if req.MaxLimit != nil {
		voucher.MaxLimit = req.MaxLimit
	}
	if req.Quota != nil {
		voucher.Quota = *req.Quota
	}
	if req.ExpiryDate != nil {
		voucher.ExpiryDate = req.ExpiryDate
	}
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive
	}

	if err := vc.vouchers.Update(c.Request.Context(), voucher); err != nil {
		zap.L().Error("Failed to update voucher", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating voucher"})
		return
	}

	c.JSON(http.StatusOK, voucher)
}

// DeleteVoucher removes a voucher. Admin only. Orders that already consumed
// the code keep their snapshot of its effect.
func (vc *VoucherController) DeleteVoucher(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid voucher ID format"})
		return
	}

	if _, err := vc.vouchers.FindByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Voucher not found"})
			return
		}
		zap.L().Error("Failed to fetch voucher", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting voucher"})
		return
	}

	if err := vc.vouchers.Delete(c.Request.Context(), id); err != nil {
		zap.L().Error("Failed to delete voucher", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting voucher"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Voucher deleted"})
}
