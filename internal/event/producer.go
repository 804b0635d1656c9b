package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adboard/adboard/internal/domain"
	pkgkafka "github.com/adboard/adboard/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicUserRegistered   = "adboard.user.registered"
	TopicListingCreated   = "adboard.listing.created"
	TopicListingUpdated   = "adboard.listing.updated"
	TopicListingDeleted   = "adboard.listing.deleted"
	TopicFavouriteAdded   = "adboard.favourite.added"
	TopicFavouriteRemoved = "adboard.favourite.removed"
	TopicMessageSent      = "adboard.message.sent"
)

// Aggregate type constants.
const (
	AggregateTypeUser      = "user"
	AggregateTypeListing   = "listing"
	AggregateTypeFavourite = "favourite"
	AggregateTypeMessage   = "message"
)

// Source identifier for events originating from this service.
const SourceAdboard = "adboard"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// ListingData is the payload shared by listing.created and listing.updated events.
type ListingData struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	CategoryID *string `json:"category_id,omitempty"`
	Title      string  `json:"title"`
	Price      string  `json:"price"`
	Discount   string  `json:"discount"`
	NetPrice   string  `json:"net_price"`
}

// ListingDeletedData is the payload for a listing.deleted event.
type ListingDeletedData struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	FavouritedBy   int    `json:"favourited_by"`
	CleanupApplied bool   `json:"cleanup_applied"`
}

// FavouriteChangeData is the payload for favourite.added and favourite.removed events.
type FavouriteChangeData struct {
	UserID    string `json:"user_id"`
	ListingID string `json:"listing_id"`
	Total     string `json:"total"`
	Count     int    `json:"count"`
}

// MessageSentData is the payload for a message.sent event.
type MessageSentData struct {
	ID          string  `json:"id"`
	ListingID   *string `json:"listing_id,omitempty"`
	SenderID    string  `json:"sender_id"`
	RecipientID string  `json:"recipient_id"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}

	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishListingCreated publishes a listing.created event.
func (p *Producer) PublishListingCreated(ctx context.Context, listing *domain.Listing) error {
	return p.publish(ctx, TopicListingCreated, listing.ID, AggregateTypeListing, listingData(listing))
}

// PublishListingUpdated publishes a listing.updated event.
func (p *Producer) PublishListingUpdated(ctx context.Context, listing *domain.Listing) error {
	return p.publish(ctx, TopicListingUpdated, listing.ID, AggregateTypeListing, listingData(listing))
}

// PublishListingDeleted publishes a listing.deleted event. favouritedBy is
// the number of favourites aggregates the listing was removed from before
// the delete.
func (p *Producer) PublishListingDeleted(ctx context.Context, listing *domain.Listing, favouritedBy int) error {
	data := ListingDeletedData{
		ID:             listing.ID,
		UserID:         listing.UserID,
		FavouritedBy:   favouritedBy,
		CleanupApplied: favouritedBy > 0,
	}

	return p.publish(ctx, TopicListingDeleted, listing.ID, AggregateTypeListing, data)
}

// PublishFavouriteAdded publishes a favourite.added event.
func (p *Producer) PublishFavouriteAdded(ctx context.Context, f *domain.Favourite, listingID string) error {
	return p.publish(ctx, TopicFavouriteAdded, f.ID, AggregateTypeFavourite, favouriteChangeData(f, listingID))
}

// PublishFavouriteRemoved publishes a favourite.removed event.
func (p *Producer) PublishFavouriteRemoved(ctx context.Context, f *domain.Favourite, listingID string) error {
	return p.publish(ctx, TopicFavouriteRemoved, f.ID, AggregateTypeFavourite, favouriteChangeData(f, listingID))
}

// PublishMessageSent publishes a message.sent event.
func (p *Producer) PublishMessageSent(ctx context.Context, m *domain.Message) error {
	data := MessageSentData{
		ID:          m.ID,
		ListingID:   m.ListingID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
	}

	return p.publish(ctx, TopicMessageSent, m.ID, AggregateTypeMessage, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceAdboard, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

func listingData(l *domain.Listing) ListingData {
	return ListingData{
		ID:         l.ID,
		UserID:     l.UserID,
		CategoryID: l.CategoryID,
		Title:      l.Title,
		Price:      l.Price.String(),
		Discount:   l.Discount.String(),
		NetPrice:   l.NetPrice.String(),
	}
}

func favouriteChangeData(f *domain.Favourite, listingID string) FavouriteChangeData {
	return FavouriteChangeData{
		UserID:    f.UserID,
		ListingID: listingID,
		Total:     f.Total.String(),
		Count:     len(f.Items),
	}
}
