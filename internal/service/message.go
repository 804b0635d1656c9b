package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/internal/repository"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// maxMessageLength caps the size of a single message body.
const maxMessageLength = 4000

// SendMessageInput holds the parameters for sending a message.
type SendMessageInput struct {
	ListingID   *string `json:"listing_id,omitempty"`
	SenderID    string  `json:"sender_id" validate:"required"`
	RecipientID string  `json:"recipient_id" validate:"required"`
	Body        string  `json:"body" validate:"required,max=4000"`
}

// MessageService implements the business logic for user-to-user messages.
type MessageService struct {
	repo     repository.MessageRepository
	listings repository.ListingRepository
	producer EventPublisher
	logger   *slog.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(
	repo repository.MessageRepository,
	listings repository.ListingRepository,
	producer EventPublisher,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		repo:     repo,
		listings: listings,
		producer: producer,
		logger:   logger,
	}
}

// Send delivers a message from one user to another, optionally attached to
// a listing.
func (s *MessageService) Send(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.InvalidInput("message body is required")
	}
	if len(body) > maxMessageLength {
		return nil, apperrors.InvalidInput("message body is too long")
	}
	if input.SenderID == input.RecipientID {
		return nil, apperrors.InvalidInput("cannot send a message to yourself")
	}

	if input.ListingID != nil {
		if _, err := s.listings.GetByID(ctx, *input.ListingID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidInput("listing does not exist")
			}
			return nil, fmt.Errorf("check listing: %w", err)
		}
	}

	message := &domain.Message{
		ID:          uuid.NewString(),
		ListingID:   input.ListingID,
		SenderID:    input.SenderID,
		RecipientID: input.RecipientID,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	if err := s.producer.PublishMessageSent(ctx, message); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish message.sent event",
			slog.String("message_id", message.ID),
			slog.String("error", err.Error()),
		)
	}

	return message, nil
}

// Conversation returns all messages between two users, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if userA == "" || userB == "" {
		return nil, apperrors.InvalidInput("both user ids are required")
	}
	return s.repo.ListConversation(ctx, userA, userB)
}

// Correspondents returns the IDs of every user the given user has exchanged
// messages with.
func (s *MessageService) Correspondents(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	return s.repo.ListCorrespondents(ctx, userID)
}

// MarkRead marks a message as read by its recipient.
func (s *MessageService) MarkRead(ctx context.Context, id, recipientID string) error {
	if id == "" || recipientID == "" {
		return apperrors.InvalidInput("message id and recipient id are required")
	}
	return s.repo.MarkRead(ctx, id, recipientID)
}
