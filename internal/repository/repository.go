package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adboard/adboard/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and their empty favourites aggregate in a
	// single transaction.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SearchByName returns users whose name matches the query, with the
	// total match count. An empty query matches everyone.
	SearchByName(ctx context.Context, query string, limit, offset int) ([]domain.User, int, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category into the store.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]domain.Category, error)

	// SearchByName returns categories whose name matches the query, ordered
	// by name.
	SearchByName(ctx context.Context, query string) ([]domain.Category, error)

	// Update modifies an existing category in the store.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ListingRepository defines the interface for listing persistence operations.
type ListingRepository interface {
	// Create inserts a new listing into the store.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// Search returns listings matching the filter along with the total
	// number of matches.
	Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int, error)

	// ListIDsByUserID returns the identifiers of every listing owned by the
	// given user.
	ListIDsByUserID(ctx context.Context, userID string) ([]string, error)

	// ListPublishedBetween returns listings published in the half-open
	// interval [from, to), ordered by user and publication time.
	ListPublishedBetween(ctx context.Context, from, to time.Time) ([]domain.Listing, error)

	// Update modifies an existing listing in the store.
	Update(ctx context.Context, listing *domain.Listing) error

	// Delete removes a listing from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// FavouriteRepository defines the interface for favourites aggregate
// persistence operations.
type FavouriteRepository interface {
	// Create inserts a new, empty favourites aggregate for the given user.
	Create(ctx context.Context, favourite *domain.Favourite) error

	// GetByUserID retrieves the favourites aggregate owned by the given
	// user, including its items in insertion order.
	GetByUserID(ctx context.Context, userID string) (*domain.Favourite, error)

	// SaveIfVersion persists the aggregate's items and total, but only if
	// the stored version still equals expectedVersion. It reports whether
	// the write was applied; a false return with nil error means another
	// writer got there first.
	SaveIfVersion(ctx context.Context, favourite *domain.Favourite, expectedVersion int64) (bool, error)

	// ListUserIDsByListingID returns the owners of every favourites
	// aggregate that currently references the given listing.
	ListUserIDsByListingID(ctx context.Context, listingID string) ([]string, error)

	// UpdateListingSnapshot rewrites the title and net price snapshot on
	// every favourite item referencing the listing and returns how many
	// items were touched. Cached totals are left alone; the next read of
	// each aggregate repairs them.
	UpdateListingSnapshot(ctx context.Context, listingID, title string, netPrice decimal.Decimal) (int, error)
}

// MessageRepository defines the interface for message persistence operations.
type MessageRepository interface {
	// Create inserts a new message into the store.
	Create(ctx context.Context, message *domain.Message) error

	// GetByID retrieves a message by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Message, error)

	// ListConversation returns all messages exchanged between two users,
	// oldest first.
	ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error)

	// ListCorrespondents returns the IDs of every user the given user has
	// exchanged at least one message with, ordered by ID.
	ListCorrespondents(ctx context.Context, userID string) ([]string, error)

	// MarkRead marks a message as read by its recipient.
	MarkRead(ctx context.Context, id, recipientID string) error
}
