package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/repository"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// maxSaveAttempts bounds the optimistic retry loop on favourites writes.
const maxSaveAttempts = 3

// cleanupConcurrency bounds how many aggregates a listing delete repairs at once.
const cleanupConcurrency = 8

// ErrUserAggregateNotFound reports a user with no favourites aggregate.
// Aggregates are provisioned with the user, so a missing one is a data
// integrity problem, not a normal empty state, and is never healed here.
var ErrUserAggregateNotFound = &apperrors.AppError{
	Code:    "USER_AGGREGATE_NOT_FOUND",
	Message: "favourites aggregate not found for user",
	Status:  http.StatusInternalServerError,
}

// AddOutcome names the result of an add-to-favourites request.
type AddOutcome string

// Add outcomes.
const (
	AddOutcomeAdded           AddOutcome = "added"
	AddOutcomeAlreadyAdded    AddOutcome = "already_added"
	AddOutcomeListingNotFound AddOutcome = "listing_not_found"
)

// RemoveOutcome names the result of a remove-from-favourites request.
type RemoveOutcome string

// Remove outcomes.
const (
	RemoveOutcomeRemoved         RemoveOutcome = "removed"
	RemoveOutcomeNotInFavourites RemoveOutcome = "not_in_favourites"
)

// FavouriteService implements the business logic for favourites.
type FavouriteService struct {
	repo     repository.FavouriteRepository
	listings repository.ListingRepository
	producer EventPublisher
	logger   *slog.Logger
}

// NewFavouriteService creates a new favourites service.
func NewFavouriteService(
	repo repository.FavouriteRepository,
	listings repository.ListingRepository,
	producer EventPublisher,
	logger *slog.Logger,
) *FavouriteService {
	return &FavouriteService{
		repo:     repo,
		listings: listings,
		producer: producer,
		logger:   logger,
	}
}

// GetByUserID returns the user's favourites aggregate. The cached total is
// recomputed from the items on every read; if the stored value has drifted
// the corrected total is written back before returning.
func (s *FavouriteService) GetByUserID(ctx context.Context, userID string) (*domain.Favourite, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	var f *domain.Favourite
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		var err error
		f, err = s.loadAggregate(ctx, userID)
		if err != nil {
			return nil, err
		}

		stored := f.Total
		f.RecomputeTotal()
		if f.Total.Equal(stored) {
			return f, nil
		}

		applied, err := s.repo.SaveIfVersion(ctx, f, f.Version)
		if err != nil {
			return nil, fmt.Errorf("repair favourites total: %w", err)
		}
		if applied {
			s.logger.WarnContext(ctx, "repaired drifted favourites total",
				slog.String("user_id", userID),
				slog.String("stored", stored.String()),
				slog.String("recomputed", f.Total.String()),
			)
			return f, nil
		}
	}

	// A read never fails just because writers kept winning the version
	// race; the returned aggregate carries the corrected total.
	s.logger.WarnContext(ctx, "favourites total repair lost version race",
		slog.String("user_id", userID),
	)
	return f, nil
}

// AddListing adds a listing to the user's favourites. Adding a listing that
// is already present reports AlreadyAdded without touching the aggregate,
// even if the listing has since been deleted. A listing that does not exist
// reports ListingNotFound; neither case is an error.
func (s *FavouriteService) AddListing(ctx context.Context, userID, listingID string) (AddOutcome, *domain.Favourite, error) {
	if userID == "" || listingID == "" {
		return "", nil, apperrors.InvalidInput("user id and listing id are required")
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		f, err := s.loadAggregate(ctx, userID)
		if err != nil {
			return "", nil, err
		}

		// Membership wins over existence: an already-favourited listing
		// answers AlreadyAdded before the listing is ever looked up.
		if f.Contains(listingID) {
			return AddOutcomeAlreadyAdded, f, nil
		}

		listing, err := s.listings.GetByID(ctx, listingID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return AddOutcomeListingNotFound, f, nil
			}
			return "", nil, fmt.Errorf("load listing: %w", err)
		}

		f.Add(domain.FavouriteItem{
			ListingID: listing.ID,
			Title:     listing.Title,
			NetPrice:  listing.NetPrice,
			AddedAt:   time.Now().UTC(),
		})
		f.RecomputeTotal()

		applied, err := s.repo.SaveIfVersion(ctx, f, f.Version)
		if err != nil {
			return "", nil, fmt.Errorf("save favourites: %w", err)
		}
		if applied {
			if err := s.producer.PublishFavouriteAdded(ctx, f, listingID); err != nil {
				s.logger.ErrorContext(ctx, "failed to publish favourite.added event",
					slog.String("user_id", userID),
					slog.String("listing_id", listingID),
					slog.String("error", err.Error()),
				)
			}
			return AddOutcomeAdded, f, nil
		}
	}

	return "", nil, apperrors.Conflict("favourites were modified concurrently")
}

// RemoveListing removes a listing from the user's favourites. Removing a
// listing that is not in the favourites reports NotInFavourites, not an error.
func (s *FavouriteService) RemoveListing(ctx context.Context, userID, listingID string) (RemoveOutcome, *domain.Favourite, error) {
	if userID == "" || listingID == "" {
		return "", nil, apperrors.InvalidInput("user id and listing id are required")
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		f, err := s.loadAggregate(ctx, userID)
		if err != nil {
			return "", nil, err
		}

		if !f.Remove(listingID) {
			return RemoveOutcomeNotInFavourites, f, nil
		}
		f.RecomputeTotal()

		applied, err := s.repo.SaveIfVersion(ctx, f, f.Version)
		if err != nil {
			return "", nil, fmt.Errorf("save favourites: %w", err)
		}
		if applied {
			if err := s.producer.PublishFavouriteRemoved(ctx, f, listingID); err != nil {
				s.logger.ErrorContext(ctx, "failed to publish favourite.removed event",
					slog.String("user_id", userID),
					slog.String("listing_id", listingID),
					slog.String("error", err.Error()),
				)
			}
			return RemoveOutcomeRemoved, f, nil
		}
	}

	return "", nil, apperrors.Conflict("favourites were modified concurrently")
}

// RemoveListingEverywhere removes the listing from every favourites
// aggregate that references it and returns how many aggregates were
// touched. Listing deletion must not leave dangling favourites, so a
// failure on any aggregate fails the whole operation.
func (s *FavouriteService) RemoveListingEverywhere(ctx context.Context, listingID string) (int, error) {
	if listingID == "" {
		return 0, apperrors.InvalidInput("listing id is required")
	}

	userIDs, err := s.repo.ListUserIDsByListingID(ctx, listingID)
	if err != nil {
		return 0, fmt.Errorf("list favourites referencing listing: %w", err)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cleanupConcurrency)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			outcome, _, err := s.RemoveListing(gctx, userID, listingID)
			if err != nil {
				return fmt.Errorf("remove listing %s from favourites of %s: %w", listingID, userID, err)
			}
			// A concurrent remove by the owner is fine, the listing is
			// gone from the aggregate either way.
			if outcome != RemoveOutcomeRemoved {
				s.logger.DebugContext(gctx, "listing already absent during cleanup",
					slog.String("user_id", userID),
					slog.String("listing_id", listingID),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	return len(userIDs), nil
}

// RefreshListingSnapshot pushes a listing's current title and net price
// into every favourite item referencing it. Totals are not recomputed here;
// the stale cached totals are repaired on each aggregate's next read.
func (s *FavouriteService) RefreshListingSnapshot(ctx context.Context, listing *domain.Listing) (int, error) {
	if listing == nil || listing.ID == "" {
		return 0, apperrors.InvalidInput("listing is required")
	}

	touched, err := s.repo.UpdateListingSnapshot(ctx, listing.ID, listing.Title, listing.NetPrice)
	if err != nil {
		return 0, fmt.Errorf("refresh favourite snapshots: %w", err)
	}

	if touched > 0 {
		s.logger.InfoContext(ctx, "refreshed favourite snapshots",
			slog.String("listing_id", listing.ID),
			slog.Int("items", touched),
		)
	}

	return touched, nil
}

func (s *FavouriteService) loadAggregate(ctx context.Context, userID string) (*domain.Favourite, error) {
	f, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrUserAggregateNotFound
		}
		return nil, fmt.Errorf("load favourites: %w", err)
	}
	return f, nil
}
