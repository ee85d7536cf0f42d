package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alvine998/marketplace-backend/middleware"
	"github.com/alvine998/marketplace-backend/models"
	"github.com/alvine998/marketplace-backend/repository"
)

type ProductController struct {
	repo  repository.ProductRepository
	cache *CacheManager
}

func NewProductController(repo repository.ProductRepository, cache *CacheManager) *ProductController {
	return &ProductController{repo: repo, cache: cache}
}

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	ImageURL    string  `json:"image_url"`
}

// ListProducts returns the paginated public catalog, cache first.
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := parsePaginationParams(c)
	search := c.Query("search")

	if pc.cache != nil {
		if cached, ok := pc.cache.GetProductList(c.Request.Context(), page, limit, search); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	products, total, err := pc.repo.List(c.Request.Context(), repository.ProductFilter{
		Search:     search,
		OnlyActive: true,
	}, page, limit)
	if err != nil {
		zap.L().Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching products"})
		return
	}

	response := map[string]interface{}{
		"items":        products,
		"total_items":  total,
		"total_pages":  (total + int64(limit) - 1) / int64(limit),
		"current_page": page,
	}
	if pc.cache != nil {
		pc.cache.SetProductListAsync(page, limit, search, response)
	}
	c.JSON(http.StatusOK, response)
}

// GetProduct returns one product, cache first.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID format"})
		return
	}

	if pc.cache != nil {
		if product, ok := pc.cache.GetProduct(c.Request.Context(), id.String()); ok {
			c.JSON(http.StatusOK, product)
			return
		}
	}

	product, err := pc.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		zap.L().Error("Failed to fetch product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching product"})
		return
	}

	if pc.cache != nil {
		pc.cache.SetProductAsync(id.String(), product)
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a catalog entry (admin only).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	product := &models.Product{
		SellerID:    userID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := pc.repo.Create(c.Request.Context(), product); err != nil {
		zap.L().Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error creating product"})
		return
	}

	if pc.cache != nil {
		pc.cache.Invalidate(c.Request.Context(), "")
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct edits a catalog entry (admin only).
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID format"})
		return
	}

	product, err := pc.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching product"})
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
		ImageURL    *string  `json:"image_url"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "details": err.Error()})
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := pc.repo.Update(c.Request.Context(), product); err != nil {
		zap.L().Error("Failed to update product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating product"})
		return
	}

	if pc.cache != nil {
		pc.cache.Invalidate(c.Request.Context(), id.String())
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a catalog entry (admin only).
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID format"})
		return
	}

	if err := pc.repo.Delete(c.Request.Context(), id); err != nil {
		zap.L().Error("Failed to delete product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting product"})
		return
	}

	if pc.cache != nil {
		pc.cache.Invalidate(c.Request.Context(), id.String())
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(c *gin.Context) (int, int) {
	const maxLimit = 100

	page := 1
	limit := 10

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	return page, limit
}
