package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/middleware"
	"github.com/alvine998/marketplace-backend/repository"
)

type CartController struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartController(carts repository.CartRepository, products repository.ProductRepository) *CartController {
	return &CartController{carts: carts, products: products}
}

type addToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1"`
}

// AddToCart upserts a cart line, adding to the quantity when the product is
// already in the cart.
func (cc *CartController) AddToCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if _, err := cc.products.FindByID(c.Request.Context(), req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		zap.L().Error("Failed to fetch product for cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding to cart"})
		return
	}

	item, err := cc.carts.AddOrIncrement(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		zap.L().Error("Failed to add to cart", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding to cart"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetCart lists the caller's cart. Admins may inspect another user's cart
// via the userId query parameter.
func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	targetUserID := userID
	if middleware.IsAdmin(c) {
		if override := c.Query("userId"); override != "" {
			parsed, err := uuid.Parse(override)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
				return
			}
			targetUserID = parsed
		}
	}

	items, err := cc.carts.FindByUser(c.Request.Context(), targetUserID)
	if err != nil {
		zap.L().Error("Failed to fetch cart", zap.String("user_id", targetUserID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error retrieving cart"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// UpdateCartItem changes a line's quantity. Owner only.
func (cc *CartController) UpdateCartItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid cart item ID format"})
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	item, err := cc.carts.FindByID(c.Request.Context(), itemID)
	if err != nil || item.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
		return
	}

	if err := cc.carts.UpdateQuantity(c.Request.Context(), itemID, req.Quantity); err != nil {
		zap.L().Error("Failed to update cart item", zap.String("id", itemID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating cart item"})
		return
	}

	item.Quantity = req.Quantity
	c.JSON(http.StatusOK, item)
}

// RemoveFromCart deletes one line. Owner only.
func (cc *CartController) RemoveFromCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid cart item ID format"})
		return
	}

	item, err := cc.carts.FindByID(c.Request.Context(), itemID)
	if err != nil || item.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
		return
	}

	if err := cc.carts.Delete(c.Request.Context(), itemID); err != nil {
		zap.L().Error("Failed to remove cart item", zap.String("id", itemID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error removing cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart deletes all of the caller's cart lines.
func (cc *CartController) ClearCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := cc.carts.DeleteAllForUser(c.Request.Context(), userID); err != nil {
		zap.L().Error("Failed to clear cart", zap.String("user_id", userID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error clearing cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
