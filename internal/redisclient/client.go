package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"juicedash/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	catalogKey     = "catalog:available"
	symptomMapKey  = "catalog:symptom_mappings"
	trackingPrefix = "tracking:"
)

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, cacheTTL time.Duration) (*Client, error) {
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

	return &Client{rdb: rdb, ttl: cacheTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCachedCatalog returns the cached available-product catalog, or
// nil on a cache miss.
func (c *Client) GetCachedCatalog(ctx context.Context) ([]models.Product, error) {
	data, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("corrupt catalog cache entry: %w", err)
	}
	return products, nil
}

// SetCachedCatalog stores the available-product catalog with the
// configured TTL.
func (c *Client) SetCachedCatalog(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, catalogKey, data, c.ttl).Err()
}

// GetCachedSymptomMappings returns the cached symptom mapping table,
// or nil on a cache miss.
func (c *Client) GetCachedSymptomMappings(ctx context.Context) ([]models.SymptomMapping, error) {
	data, err := c.rdb.Get(ctx, symptomMapKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var mappings []models.SymptomMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("corrupt symptom mapping cache entry: %w", err)
	}
	return mappings, nil
}

// SetCachedSymptomMappings stores the symptom mapping table with the
// configured TTL.
func (c *Client) SetCachedSymptomMappings(ctx context.Context, mappings []models.SymptomMapping) error {
	data, err := json.Marshal(mappings)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, symptomMapKey, data, c.ttl).Err()
}

// SetTrackingSnapshot caches the latest tracking view for an order.
func (c *Client) SetTrackingSnapshot(ctx context.Context, orderID string, tracking *models.OrderTracking, ttl time.Duration) error {
	data, err := json.Marshal(tracking)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, trackingPrefix+orderID, data, ttl).Err()
}

// GetTrackingSnapshot returns the cached tracking view for an order,
// or nil on a cache miss.
func (c *Client) GetTrackingSnapshot(ctx context.Context, orderID string) (*models.OrderTracking, error) {
	data, err := c.rdb.Get(ctx, trackingPrefix+orderID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tracking models.OrderTracking
	if err := json.Unmarshal(data, &tracking); err != nil {
		return nil, err
	}
	return &tracking, nil
}

// DeleteTrackingSnapshot drops the cached tracking view for an order.
func (c *Client) DeleteTrackingSnapshot(ctx context.Context, orderID string) error {
	return c.rdb.Del(ctx, trackingPrefix+orderID).Err()
}
