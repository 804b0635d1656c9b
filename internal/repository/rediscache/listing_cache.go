package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adboard/adboard/internal/domain"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

const keyPrefix = "listing:"

// ListingCache caches individual listings in Redis in front of the
// PostgreSQL repository.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a new Redis-backed listing cache.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached listing by ID.
func (c *ListingCache) Get(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get listing: %w", err)
	}

	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("unmarshal listing: %w", err)
	}

	return &listing, nil
}

// Set stores a listing with the configured TTL.
func (c *ListingCache) Set(ctx context.Context, listing *domain.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+listing.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set listing: %w", err)
	}

	return nil
}

// Invalidate drops a listing from the cache. Callers invalidate on every
// update and delete so readers never see a stale net price.
func (c *ListingCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del listing: %w", err)
	}

	return nil
}
