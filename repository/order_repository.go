package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/models"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID uuid.UUID
	Status models.OrderStatus
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create inserts the order together with its items.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, int64, error)
	// TransitionFromPending applies a terminal (or pending) status only when
	// the order is still pending. Returns false without error when the row
	// was already past pending, which callers treat as an idempotent no-op.
	TransitionFromPending(ctx context.Context, id uuid.UUID, status models.OrderStatus, at time.Time) (bool, error)
	SetPaymentSession(ctx context.Context, id uuid.UUID, token, redirectURL string) error
	RecordNotification(ctx context.Context, n *models.PaymentNotification) error
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) List(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) TransitionFromPending(ctx context.Context, id uuid.UUID, status models.OrderStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.OrderStatusCompleted:
		updates["completed_at"] = &at
	case models.OrderStatusCancelled:
		updates["cancelled_at"] = &at
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormOrderRepository) SetPaymentSession(ctx context.Context, id uuid.UUID, token, redirectURL string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_token": token,
			"payment_url":   redirectURL,
		}).Error
}

func (r *GormOrderRepository) RecordNotification(ctx context.Context, n *models.PaymentNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}
