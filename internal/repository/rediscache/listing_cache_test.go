package rediscache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adboard/adboard/internal/domain"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

func setupTestCache(t *testing.T) (*ListingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewListingCache(client, 15*time.Minute)
	return cache, mr
}

func sampleListing() *domain.Listing {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Listing{
		ID:          "l-1",
		UserID:      "u-1",
		Title:       "City bike",
		Price:       decimal.RequireFromString("100.00"),
		Discount:    decimal.RequireFromString("33.333"),
		NetPrice:    decimal.RequireFromString("66.66"),
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestListingCache_SetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)

	listing := sampleListing()
	require.NoError(t, cache.Set(context.Background(), listing))

	got, err := cache.Get(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.Title, got.Title)
	assert.True(t, got.NetPrice.Equal(listing.NetPrice))
}

func TestListingCache_Get_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)

	got, err := cache.Get(context.Background(), "l-missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListingCache_Get_Expired(t *testing.T) {
	cache, mr := setupTestCache(t)

	listing := sampleListing()
	require.NoError(t, cache.Set(context.Background(), listing))

	mr.FastForward(16 * time.Minute)

	got, err := cache.Get(context.Background(), listing.ID)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListingCache_Invalidate(t *testing.T) {
	cache, mr := setupTestCache(t)

	listing := sampleListing()
	data, err := json.Marshal(listing)
	require.NoError(t, err)
	require.NoError(t, mr.Set("listing:"+listing.ID, string(data)))

	require.NoError(t, cache.Invalidate(context.Background(), listing.ID))

	assert.False(t, mr.Exists("listing:"+listing.ID))
}
