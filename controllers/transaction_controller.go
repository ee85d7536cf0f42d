package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alvine998/marketplace-backend/middleware"
	"github.com/alvine998/marketplace-backend/services"
)

type TransactionController struct {
	orders services.OrderService
}

func NewTransactionController(orders services.OrderService) *TransactionController {
	return &TransactionController{orders: orders}
}

// Checkout converts the caller's cart into an order.
func (tc *TransactionController) Checkout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := tc.orders.Checkout(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Checkout successful",
		"transaction": order,
	})
}

// GetOrders lists the caller's order history. Admins may filter by userId.
func (tc *TransactionController) GetOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)
	query := services.OrderListQuery{
		Page:         page,
		Limit:        limit,
		Status:       c.Query("status"),
		TargetUserID: c.Query("userId"),
	}

	resp, svcErr := tc.orders.ListOrders(c.Request.Context(), userID, middleware.IsAdmin(c), query)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetOrderByID returns one order with its lines. Owner or admin only.
func (tc *TransactionController) GetOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order ID format"})
		return
	}

	order, svcErr := tc.orders.GetOrder(c.Request.Context(), userID, middleware.IsAdmin(c), orderID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, order)
}
