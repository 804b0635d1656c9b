package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/repository"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// Search pagination bounds.
const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// ListingCache caches listings by ID in front of the repository.
type ListingCache interface {
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Set(ctx context.Context, listing *domain.Listing) error
	Invalidate(ctx context.Context, id string) error
}

// CreateListingInput holds the parameters for publishing a listing.
type CreateListingInput struct {
	UserID      string          `json:"user_id" validate:"required"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

// UpdateListingInput holds the parameters for updating a listing. Nil
// fields are left unchanged.
type UpdateListingInput struct {
	CategoryID  *string          `json:"category_id,omitempty"`
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

// ListingService implements the business logic for listings.
type ListingService struct {
	repo       repository.ListingRepository
	cache      ListingCache
	favourites *FavouriteService
	producer   EventPublisher
	logger     *slog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(
	repo repository.ListingRepository,
	cache ListingCache,
	favourites *FavouriteService,
	producer EventPublisher,
	logger *slog.Logger,
) *ListingService {
	return &ListingService{
		repo:       repo,
		cache:      cache,
		favourites: favourites,
		producer:   producer,
		logger:     logger,
	}
}

// Create publishes a new listing. The net price is computed from the price
// and discount before the listing is stored.
func (s *ListingService) Create(ctx context.Context, input CreateListingInput) (*domain.Listing, error) {
	if err := validatePricing(input.Price, input.Discount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Discount:    input.Discount,
		ImageURL:    input.ImageURL,
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	listing.ApplyPricing()

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.cacheSet(ctx, listing)

	if err := s.producer.PublishListingCreated(ctx, listing); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.created event",
			slog.String("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}

	return listing, nil
}

// GetByID retrieves a listing, serving from the cache when possible.
func (s *ListingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("listing id is required")
	}

	if listing, err := s.cache.Get(ctx, id); err == nil {
		return listing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "listing cache read failed",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, listing)

	return listing, nil
}

// Search returns listings matching the filter and the total match count.
func (s *ListingService) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultSearchLimit
	}
	if filter.Limit > maxSearchLimit {
		filter.Limit = maxSearchLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.repo.Search(ctx, filter)
}

// Update modifies a listing. A price or discount change recomputes the net
// price, pushes the new snapshot into every favourite referencing the
// listing and drops the cache entry.
func (s *ListingService) Update(ctx context.Context, id string, input UpdateListingInput) (*domain.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("listing id is required")
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	repricing := false
	if input.CategoryID != nil {
		listing.CategoryID = input.CategoryID
	}
	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.ImageURL != nil {
		listing.ImageURL = *input.ImageURL
	}
	if input.Price != nil {
		listing.Price = *input.Price
		repricing = true
	}
	if input.Discount != nil {
		listing.Discount = *input.Discount
		repricing = true
	}

	if err := validatePricing(listing.Price, listing.Discount); err != nil {
		return nil, err
	}
	listing.ApplyPricing()

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}

	if repricing || input.Title != nil {
		if _, err := s.favourites.RefreshListingSnapshot(ctx, listing); err != nil {
			s.logger.ErrorContext(ctx, "failed to refresh favourite snapshots",
				slog.String("listing_id", listing.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.cacheInvalidate(ctx, listing.ID)

	if err := s.producer.PublishListingUpdated(ctx, listing); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.updated event",
			slog.String("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}

	return listing, nil
}

// Delete removes a listing. The listing is first removed from every
// favourites aggregate referencing it; if that cleanup fails the listing
// stays, so favourites never dangle.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("listing id is required")
	}

	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	removed, err := s.favourites.RemoveListingEverywhere(ctx, id)
	if err != nil {
		return fmt.Errorf("clean up favourites before delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cacheInvalidate(ctx, id)

	if err := s.producer.PublishListingDeleted(ctx, listing, removed); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish listing.deleted event",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// DeleteAllByUser deletes every listing the user owns and returns how many
// were deleted. Each listing goes through Delete, so it is scrubbed from all
// favourites and evicted from the cache before the row goes.
func (s *ListingService) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperrors.InvalidInput("user id is required")
	}

	ids, err := s.repo.ListIDsByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list user's listings: %w", err)
	}

	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return 0, fmt.Errorf("delete listing %s: %w", id, err)
		}
	}

	return len(ids), nil
}

func (s *ListingService) cacheSet(ctx context.Context, listing *domain.Listing) {
	if err := s.cache.Set(ctx, listing); err != nil {
		s.logger.WarnContext(ctx, "listing cache write failed",
			slog.String("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ListingService) cacheInvalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "listing cache invalidation failed",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
	}
}

func validatePricing(price, discount decimal.Decimal) error {
	if price.IsNegative() {
		return apperrors.InvalidInput("price must not be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return apperrors.InvalidInput("discount must be between 0 and 100")
	}
	return nil
}
