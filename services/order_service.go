package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/awspkg"
	"github.com/alvine998/marketplace-backend/kafka"
	"github.com/alvine998/marketplace-backend/models"
	"github.com/alvine998/marketplace-backend/repository"
)

// CheckoutRequest is the payload converting a cart into an order.
type CheckoutRequest struct {
	PaymentMethod   string  `json:"payment_method" binding:"required"`
	ShippingAddress string  `json:"shipping_address" binding:"required"`
	ShippingCost    float64 `json:"shipping_cost" binding:"gte=0"`
	VoucherCode     string  `json:"voucher_code"`
}

// OrderListQuery carries pagination and filtering for order history.
type OrderListQuery struct {
	Page   int
	Limit  int
	Status string
	// TargetUserID is honored for admins only; everyone else is scoped to
	// their own id no matter what they pass.
	TargetUserID string
}

// OrderListResponse is the paging envelope of the storefront.
type OrderListResponse struct {
	Items       []models.Order `json:"items"`
	TotalItems  int64          `json:"total_items"`
	TotalPages  int64          `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}

// OrderService is the order engine: checkout plus order history access.
type OrderService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*models.Order, *ServiceError)
	GetOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, *ServiceError)
	ListOrders(ctx context.Context, userID uuid.UUID, isAdmin bool, q OrderListQuery) (*OrderListResponse, *ServiceError)
}

type orderServiceImpl struct {
	uow         repository.UnitOfWork
	orders      repository.OrderRepository
	producer    kafka.ProducerAPI
	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

// NewOrderService creates the order engine. producer and snsClient may be nil
// when event publication is disabled.
func NewOrderService(
	uow repository.UnitOfWork,
	orders repository.OrderRepository,
	producer kafka.ProducerAPI,
	snsClient awspkg.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		uow:         uow,
		orders:      orders,
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// Checkout converts the user's cart into a pending order inside one atomic
// transaction: order + item insert, conditional stock decrements, conditional
// voucher quota decrement, cart deletion. Any failure rolls everything back.
func (s *orderServiceImpl) Checkout(ctx context.Context, userID uuid.UUID, req *CheckoutRequest) (*models.Order, *ServiceError) {
	var created *models.Order

	txErr := s.uow.Do(ctx, func(r *repository.Repositories) error {
		cartItems, err := r.Carts.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart()
		}

		// Price at commit time: totals come from the current product price,
		// never a cached cart price.
		var itemsTotal float64
		for _, item := range cartItems {
			if item.Product == nil {
				return ErrCheckoutFailed()
			}
			if item.Product.Stock < item.Quantity {
				return ErrInsufficientStockFor(item.Product.Name)
			}
			itemsTotal += item.Product.Price * float64(item.Quantity)
		}

		var discountAmount float64
		var usedVoucher *models.Voucher
		if req.VoucherCode != "" {
			voucher, err := r.Vouchers.FindActiveByCode(ctx, req.VoucherCode)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVoucherInvalid()
				}
				return err
			}
			if voucher.IsExpired(time.Now()) {
				return ErrVoucherExpired()
			}
			if !voucher.HasQuota() {
				return ErrVoucherExhausted()
			}
			if itemsTotal < voucher.MinTransaction {
				return ErrVoucherMinimumNotMet(voucher.MinTransaction)
			}
			discountAmount = ComputeDiscount(voucher, itemsTotal, req.ShippingCost)
			usedVoucher = voucher
		}

		finalTotal := itemsTotal + req.ShippingCost - discountAmount

		order := &models.Order{
			UserID:          userID,
			TotalAmount:     finalTotal,
			ShippingCost:    req.ShippingCost,
			DiscountAmount:  discountAmount,
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
			Status:          models.OrderStatusPending,
		}
		if usedVoucher != nil {
			code := usedVoucher.Code
			order.VoucherCode = &code
		}
		for _, item := range cartItems {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price, // snapshot
			})
		}

		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}

		for _, item := range cartItems {
			if err := r.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return ErrInsufficientStockFor(item.Product.Name)
				}
				return err
			}
		}

		if usedVoucher != nil && usedVoucher.Quota != models.UnlimitedQuota {
			if err := r.Vouchers.DecrementQuota(ctx, usedVoucher.ID); err != nil {
				if errors.Is(err, repository.ErrQuotaExhausted) {
					return ErrVoucherExhausted()
				}
				return err
			}
		}

		if err := r.Carts.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}

		created = order
		return nil
	})

	if txErr != nil {
		var svcErr *ServiceError
		if errors.As(txErr, &svcErr) {
			return nil, svcErr
		}
		s.logger.Error("Checkout transaction failed",
			zap.String("user_id", userID.String()),
			zap.Error(txErr),
		)
		return nil, ErrCheckoutFailed()
	}

	s.publishOrderEvent(ctx, models.OrderEventCreated, created)
	return created, nil
}

// ComputeDiscount applies the voucher benefit to a priced cart. Percentage
// values are clamped by the voucher's max limit; the result never exceeds
// items plus shipping, so the final total cannot go negative.
func ComputeDiscount(v *models.Voucher, itemsTotal, shippingCost float64) float64 {
	var discount float64
	switch v.ValueType {
	case models.VoucherValuePercentage:
		discount = itemsTotal * v.Value / 100
		if v.MaxLimit != nil && discount > *v.MaxLimit {
			discount = *v.MaxLimit
		}
	case models.VoucherValueFixed:
		discount = v.Value
	}

	if max := itemsTotal + shippingCost; discount > max {
		discount = max
	}
	return discount
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Order")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, ErrInternal("Error fetching order details")
	}

	if !isAdmin && order.UserID != userID {
		return nil, ErrForbidden()
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID uuid.UUID, isAdmin bool, q OrderListQuery) (*OrderListResponse, *ServiceError) {
	targetUserID := userID
	if isAdmin && q.TargetUserID != "" {
		parsed, err := uuid.Parse(q.TargetUserID)
		if err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: "Invalid user ID format"}
		}
		targetUserID = parsed
	}

	filter := repository.OrderFilter{
		UserID: targetUserID,
		Status: models.OrderStatus(q.Status),
	}

	orders, total, err := s.orders.List(ctx, filter, q.Page, q.Limit)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.String("user_id", targetUserID.String()), zap.Error(err))
		return nil, ErrInternal("Error fetching order history")
	}

	return &OrderListResponse{
		Items:       orders,
		TotalItems:  total,
		TotalPages:  totalPages(total, q.Limit),
		CurrentPage: q.Page,
	}, nil
}

func totalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// publishOrderEvent sends the lifecycle event to Kafka with an SNS mirror.
// Both are best-effort: the order is already committed.
func (s *orderServiceImpl) publishOrderEvent(ctx context.Context, eventType string, order *models.Order) {
	event := models.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID.String(),
		UserID:      order.UserID.String(),
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		Timestamp:   time.Now().UTC(),
	}
	if order.VoucherCode != nil {
		event.VoucherCode = *order.VoucherCode
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal order event", zap.Error(err))
		return
	}

	if s.producer != nil {
		if err := s.producer.Publish(ctx, []byte(event.OrderID), payload); err != nil {
			s.logger.Error("Failed to publish order event to Kafka",
				zap.String("type", eventType),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}

	if s.snsClient != nil && s.snsTopicArn != "" {
		if err := s.snsClient.Publish(ctx, s.snsTopicArn, payload); err != nil {
			s.logger.Warn("SNS publish failed", zap.String("order_id", event.OrderID), zap.Error(err))
		}
	}
}
