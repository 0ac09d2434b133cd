package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
)

const (
	productKeyPrefix = "product:"
	variantKeyPrefix = "variant:"
	defaultCacheTTL  = 5 * time.Minute
)

// CachedProductRepository is a Redis read-through wrapper around a
// ProductRepository. Cache failures are logged and degrade to the
// underlying repository; they never fail a lookup.
type CachedProductRepository struct {
	next   ProductRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProductRepository creates a Redis-backed catalog cache in front
// of the given repository.
func NewCachedProductRepository(next ProductRepository, cfg config.RedisConfig, logger *slog.Logger) *CachedProductRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &CachedProductRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetProduct returns a product from cache, falling back to the repository
// and populating the cache on a miss.
func (c *CachedProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	key := productKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var product models.Product
		if err := json.Unmarshal(data, &product); err == nil {
			c.logger.Debug("catalog cache hit", "product_id", id)
			return &product, nil
		}
	} else if err != redis.Nil {
		c.logger.Error("catalog cache get error", "product_id", id, "error", err)
	}

	product, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, product)
	return product, nil
}

// GetVariant returns a variant from cache, falling back to the repository
// and populating the cache on a miss.
func (c *CachedProductRepository) GetVariant(ctx context.Context, productID, variantID string) (*models.Variant, error) {
	key := variantKeyPrefix + productID + ":" + variantID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var variant models.Variant
		if err := json.Unmarshal(data, &variant); err == nil {
			c.logger.Debug("catalog cache hit", "product_id", productID, "variant_id", variantID)
			return &variant, nil
		}
	} else if err != redis.Nil {
		c.logger.Error("catalog cache get error",
			"product_id", productID,
			"variant_id", variantID,
			"error", err,
		)
	}

	variant, err := c.next.GetVariant(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, variant)
	return variant, nil
}

// Close releases the Redis connection.
func (c *CachedProductRepository) Close() error {
	return c.client.Close()
}

func (c *CachedProductRepository) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("catalog cache set error", "key", key, "error", err)
	}
}
