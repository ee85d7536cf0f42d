package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/models"
	"github.com/alvine998/marketplace-backend/repository"
)

// PaymentSession is the processor-issued checkout handle, returned verbatim.
type PaymentSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CustomerDetails identifies the paying customer to the processor.
type CustomerDetails struct {
	Name  string
	Email string
}

// ProcessorNotification is the verified content of a webhook delivery.
type ProcessorNotification struct {
	OrderID           string
	TransactionID     string
	TransactionStatus string
	FraudStatus       string
}

// PaymentMethod is one entry of the processor's supported-method catalog.
type PaymentMethod struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// PaymentProcessor is the external payment gateway collaborator. Payload
// authenticity is its responsibility: VerifyNotification re-queries the
// processor for the authoritative transaction state instead of trusting the
// delivered body.
type PaymentProcessor interface {
	CreateTransaction(orderID string, grossAmount int64, customer CustomerDetails) (*PaymentSession, error)
	VerifyNotification(ctx context.Context, orderID string) (*ProcessorNotification, error)
}

// PaymentService reconciles processor callbacks with the order store.
type PaymentService interface {
	RequestToken(ctx context.Context, userID, orderID uuid.UUID) (*PaymentSession, *ServiceError)
	HandleNotification(ctx context.Context, rawPayload []byte) *ServiceError
	ListPaymentMethods() []PaymentMethod
}

type paymentServiceImpl struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	processor PaymentProcessor
	events    orderEventPublisher
	logger    *zap.Logger
}

// orderEventPublisher lets the adapter reuse the order engine's event plumbing.
type orderEventPublisher interface {
	publishOrderEvent(ctx context.Context, eventType string, order *models.Order)
}

// NewPaymentService creates the payment reconciliation adapter. orderSvc must
// be the OrderService built by NewOrderService; its event publisher is shared.
func NewPaymentService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	processor PaymentProcessor,
	orderSvc OrderService,
	logger *zap.Logger,
) PaymentService {
	events, _ := orderSvc.(orderEventPublisher)
	return &paymentServiceImpl{
		orders:    orders,
		users:     users,
		processor: processor,
		events:    events,
		logger:    logger,
	}
}

// RequestToken asks the processor for a payment session for a pending order
// owned by the requester and stores the handle on the order.
func (s *paymentServiceImpl) RequestToken(ctx context.Context, userID, orderID uuid.UUID) (*PaymentSession, *ServiceError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil || order.UserID != userID {
		// Same response for absent and foreign orders: no existence leak.
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Failed to fetch order for payment token",
				zap.String("order_id", orderID.String()), zap.Error(err))
			return nil, ErrInternal("Error creating payment token")
		}
		return nil, ErrNotFound("Order")
	}

	customer := CustomerDetails{}
	if user, err := s.users.FindByID(ctx, order.UserID); err == nil {
		customer.Name = user.Name
		customer.Email = user.Email
	}

	session, err := s.processor.CreateTransaction(order.ID.String(), roundAmount(order.TotalAmount), customer)
	if err != nil {
		s.logger.Error("Payment processor rejected session request",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, ErrInternal("Error creating payment token")
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.Token, session.RedirectURL); err != nil {
		s.logger.Error("Failed to store payment session",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, ErrInternal("Error creating payment token")
	}

	return session, nil
}

// HandleNotification consumes a processor webhook. Redeliveries against
// orders already in a terminal state are acknowledged no-ops; unknown orders
// are final failures (processors do not retry 404s); store failures surface
// a retryable code so the processor redelivers.
func (s *paymentServiceImpl) HandleNotification(ctx context.Context, rawPayload []byte) *ServiceError {
	var body struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(rawPayload, &body); err != nil || body.OrderID == "" {
		s.logger.Warn("Malformed payment notification", zap.Error(err))
		// Redelivery cannot fix a malformed body; acknowledge it.
		return nil
	}

	orderID, err := uuid.Parse(body.OrderID)
	if err != nil {
		s.logger.Warn("Payment notification with invalid order id", zap.String("order_id", body.OrderID))
		return nil
	}

	notif, err := s.processor.VerifyNotification(ctx, body.OrderID)
	if err != nil {
		s.logger.Error("Payment notification verification failed",
			zap.String("order_id", body.OrderID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Error handling payment notification"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Payment notification for unknown order", zap.String("order_id", body.OrderID))
			return ErrNotFound("Transaction")
		}
		s.logger.Error("Failed to fetch order for notification",
			zap.String("order_id", body.OrderID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Error handling payment notification"}
	}

	if err := s.orders.RecordNotification(ctx, &models.PaymentNotification{
		OrderID:           order.ID,
		TransactionID:     notif.TransactionID,
		TransactionStatus: notif.TransactionStatus,
		FraudStatus:       notif.FraudStatus,
		RawPayload:        string(rawPayload),
	}); err != nil {
		s.logger.Error("Failed to record payment notification",
			zap.String("order_id", body.OrderID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Error handling payment notification"}
	}

	target, apply, recognized := ResolveTransition(notif.TransactionStatus, notif.FraudStatus)
	if !recognized {
		s.logger.Warn("Unrecognized processor status",
			zap.String("order_id", body.OrderID),
			zap.String("transaction_status", notif.TransactionStatus),
		)
		return nil
	}
	if !apply {
		return nil
	}

	applied, err := s.orders.TransitionFromPending(ctx, order.ID, target, time.Now())
	if err != nil {
		s.logger.Error("Failed to transition order status",
			zap.String("order_id", body.OrderID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Error handling payment notification"}
	}
	if !applied {
		// Already terminal: a redelivered webhook, safe to acknowledge.
		s.logger.Info("Skipping duplicate payment notification",
			zap.String("order_id", body.OrderID),
			zap.String("status", string(order.Status)),
		)
		return nil
	}

	s.logger.Info("Order status transitioned",
		zap.String("order_id", body.OrderID),
		zap.String("status", string(target)),
	)

	if s.events != nil {
		order.Status = target
		eventType := models.OrderEventCompleted
		if target == models.OrderStatusCancelled {
			eventType = models.OrderEventCancelled
		}
		s.events.publishOrderEvent(ctx, eventType, order)
	}

	return nil
}

// ListPaymentMethods returns the processor's Snap method catalog. Static per
// merchant configuration.
func (s *paymentServiceImpl) ListPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "credit_card", Name: "Credit Card", Group: "Cards"},
		{ID: "gopay", Name: "GoPay", Group: "E-Wallet"},
		{ID: "shopeepay", Name: "ShopeePay", Group: "E-Wallet"},
		{ID: "bank_transfer", Name: "Virtual Account (VA)", Group: "Bank Transfer"},
		{ID: "bca_klikpay", Name: "BCA KlikPay", Group: "Direct Debit"},
		{ID: "cimb_clicks", Name: "CIMB Clicks", Group: "Direct Debit"},
		{ID: "indomaret", Name: "Indomaret", Group: "Over the Counter"},
		{ID: "alfamart", Name: "Alfamart", Group: "Over the Counter"},
		{ID: "akulaku", Name: "Akulaku", Group: "Installment"},
	}
}

func roundAmount(amount float64) int64 {
	return int64(math.Round(amount))
}
