package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/models"
)

// ErrQuotaExhausted is returned when a conditional quota decrement finds
// nothing left to consume.
var ErrQuotaExhausted = errors.New("voucher quota exhausted")

// VoucherRepository defines the interface for voucher data access
type VoucherRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	// FindActiveByCode only matches vouchers with is_active = true; expiry
	// and quota are validated by the caller so it can report precise errors.
	FindActiveByCode(ctx context.Context, code string) (*models.Voucher, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	ListAll(ctx context.Context) ([]models.Voucher, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Voucher, error)
	Create(ctx context.Context, voucher *models.Voucher) error
	Update(ctx context.Context, voucher *models.Voucher) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DecrementQuota atomically consumes one redemption of a finite quota,
	// failing with ErrQuotaExhausted when none remain. Unlimited vouchers
	// must not be passed here.
	DecrementQuota(ctx context.Context, id uuid.UUID) error
}

// GormVoucherRepository implements VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

func NewGormVoucherRepository(db *gorm.DB) VoucherRepository {
	return &GormVoucherRepository{db: db}
}

func (r *GormVoucherRepository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).First(&voucher, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *GormVoucherRepository) FindActiveByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&voucher).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *GormVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).First(&voucher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *GormVoucherRepository) ListAll(ctx context.Context) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *GormVoucherRepository) ListActive(ctx context.Context, now time.Time) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("expiry_date IS NULL OR expiry_date > ?", now).
		Where("quota = ? OR quota > 0", models.UnlimitedQuota).
		Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *GormVoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *GormVoucherRepository) Update(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Save(voucher).Error
}

func (r *GormVoucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Voucher{}, "id = ?", id).Error
}

// DecrementQuota issues UPDATE ... SET quota = quota - 1 WHERE quota > 0 so a
// finite quota is consumed at most once per committed order and never goes
// negative, regardless of concurrent redemptions.
func (r *GormVoucherRepository) DecrementQuota(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND quota > 0", id).
		UpdateColumn("quota", gorm.Expr("quota - ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuotaExhausted
	}
	return nil
}
