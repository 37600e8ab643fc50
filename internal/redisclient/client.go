package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bakery-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Key namespaces. cartKeyPrefix is part of the persistence contract:
// changing it silently discards every live cart, so treat any change as a
// deliberate migration.
const (
	cartKeyPrefix = "cart:"
	catalogKey    = "catalog:products"
	sessionTTL    = 0 // carts never expire
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// LoadCart rehydrates the cart for a session. A missing key is an empty
// cart, not an error; a value that fails to decode is returned as an error
// so the caller can fall back to an empty cart.
func (c *Client) LoadCart(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	raw, err := c.rdb.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("corrupt cart data: %w", err)
	}
	return items, nil
}

// SaveCart persists the full item collection for a session. Called
// synchronously on every cart mutation so that a rehydration immediately
// afterwards observes the write.
func (c *Client) SaveCart(ctx context.Context, sessionID string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return c.rdb.Set(ctx, cartKeyPrefix+sessionID, raw, sessionTTL).Err()
}

// DeleteCart removes the persisted cart for a session
func (c *Client) DeleteCart(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, cartKeyPrefix+sessionID).Err()
}

// GetCatalog returns the cached product collection, or (nil, nil) on a
// cache miss
func (c *Client) GetCatalog(ctx context.Context) ([]models.Product, error) {
	raw, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog cache: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("corrupt catalog cache: %w", err)
	}
	return products, nil
}

// SetCatalog caches the product collection with a TTL
func (c *Client) SetCatalog(ctx context.Context, products []models.Product, ttl time.Duration) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return c.rdb.Set(ctx, catalogKey, raw, ttl).Err()
}

// InvalidateCatalog drops the cached product collection. Called after any
// admin mutation so the next public read sees a full reload.
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogKey).Err()
}
