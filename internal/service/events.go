package service

import (
	"context"

	"github.com/adboard/adboard/internal/domain"
)

// EventPublisher is the slice of the event fan-out the services depend on.
// *event.Producer satisfies it in production; tests substitute a stub so no
// broker is involved.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishListingCreated(ctx context.Context, listing *domain.Listing) error
	PublishListingUpdated(ctx context.Context, listing *domain.Listing) error
	PublishListingDeleted(ctx context.Context, listing *domain.Listing, favouritedBy int) error
	PublishFavouriteAdded(ctx context.Context, f *domain.Favourite, listingID string) error
	PublishFavouriteRemoved(ctx context.Context, f *domain.Favourite, listingID string) error
	PublishMessageSent(ctx context.Context, m *domain.Message) error
}
