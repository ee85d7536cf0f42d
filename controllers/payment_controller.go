package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alvine998/marketplace-backend/middleware"
	"github.com/alvine998/marketplace-backend/services"
)

type PaymentController struct {
	payments services.PaymentService
}

func NewPaymentController(payments services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

type createTokenRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// CreateToken obtains a payment session for a pending order owned by the
// caller.
func (pc *PaymentController) CreateToken(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	session, svcErr := pc.payments.RequestToken(c.Request.Context(), userID, req.OrderID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListMethods returns the supported payment method catalog.
func (pc *PaymentController) ListMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"payment_methods": pc.payments.ListPaymentMethods()})
}

// HandleNotification is the processor webhook. It is unauthenticated by
// design: authenticity comes from re-querying the processor, not from the
// delivered payload. Response codes drive redelivery: 2xx acknowledges,
// 404 is final, 5xx asks the processor to retry.
func (pc *PaymentController) HandleNotification(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		zap.L().Warn("Failed to read notification body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"message": "OK"})
		return
	}

	if svcErr := pc.payments.HandleNotification(c.Request.Context(), payload); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}
