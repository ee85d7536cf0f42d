package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/models"
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	// FindByUser returns the user's cart lines with products preloaded.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	// AddOrIncrement upserts a line, adding qty to an existing line for the
	// same (user, product).
	AddOrIncrement(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormCartRepository) AddOrIncrement(ctx context.Context, userID, productID uuid.UUID, qty int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	switch {
	case err == nil:
		item.Quantity += qty
		if err := r.db.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	case err == gorm.ErrRecordNotFound:
		item = models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
		if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	default:
		return nil, err
	}
}

func (r *GormCartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", qty).Error
}

func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

func (r *GormCartRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
