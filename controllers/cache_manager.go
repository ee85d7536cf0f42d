package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alvine998/marketplace-backend/models"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"
	defaultCacheTTL        = 10 * time.Minute
)

// CacheManager is a read-through Redis cache for the product catalog.
// Writes bump a version key so every cached listing is invalidated at once.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(rdb *redis.Client) *CacheManager {
	return &CacheManager{redis: rdb, ttl: defaultCacheTTL}
}

// GetProduct retrieves a cached product detail.
func (cm *CacheManager) GetProduct(ctx context.Context, productID string) (*models.Product, bool) {
	data, err := cm.redis.Get(ctx, productCachePrefix+productID).Result()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		zap.L().Warn("Failed to unmarshal cached product", zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a single product without blocking the request.
func (cm *CacheManager) SetProductAsync(productID string, product *models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(product)
		if err != nil {
			zap.L().Warn("Failed to marshal product for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, productCachePrefix+productID, data, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product", zap.String("product_id", productID), zap.Error(err))
		}
	}()
}

// GetProductList retrieves a cached listing page.
func (cm *CacheManager) GetProductList(ctx context.Context, page, limit int, search string) (map[string]interface{}, bool) {
	version, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil || version == 0 {
		return nil, false
	}

	data, err := cm.redis.Get(ctx, cm.listKey(version, page, limit, search)).Result()
	if err != nil {
		return nil, false
	}

	var response map[string]interface{}
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return response, true
}

// SetProductListAsync caches a listing page without blocking the request.
func (cm *CacheManager) SetProductListAsync(page, limit int, search string, response map[string]interface{}) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.redis.Get(bgCtx, cacheVersionKey).Int64()
		if err == redis.Nil {
			version, err = cm.redis.Incr(bgCtx, cacheVersionKey).Result()
		}
		if err != nil || version == 0 {
			return
		}
		data, err := json.Marshal(response)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, cm.listKey(version, page, limit, search), data, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate drops the product detail entry and bumps the listing version.
func (cm *CacheManager) Invalidate(ctx context.Context, productID string) {
	if productID != "" {
		if err := cm.redis.Del(ctx, productCachePrefix+productID).Err(); err != nil {
			zap.L().Warn("Failed to drop product cache entry", zap.Error(err))
		}
	}
	if err := cm.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		zap.L().Warn("Failed to bump product cache version", zap.Error(err))
	}
}

func (cm *CacheManager) listKey(version int64, page, limit int, search string) string {
	return fmt.Sprintf("%s%d:p%d:l%d:s%s", productListCachePrefix, version, page, limit, search)
}
