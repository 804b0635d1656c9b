package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/pkg/database"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// MessageRepository implements repository.MessageRepository using PostgreSQL.
type MessageRepository struct {
	db database.DBTX
}

// NewMessageRepository creates a new PostgreSQL-backed message repository.
func NewMessageRepository(db database.DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message into the database.
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, listing_id, sender_id, recipient_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.ListingID,
		m.SenderID,
		m.RecipientID,
		m.Body,
		m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("sender, recipient or listing does not exist")
		}
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// GetByID retrieves a message by its ID.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	query := `
		SELECT id, listing_id, sender_id, recipient_id, body, read_at, created_at
		FROM messages
		WHERE id = $1`

	var m domain.Message
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.ListingID,
		&m.SenderID,
		&m.RecipientID,
		&m.Body,
		&m.ReadAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("message", id)
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}

	return &m, nil
}

// ListConversation returns all messages exchanged between two users, oldest first.
func (r *MessageRepository) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	query := `
		SELECT id, listing_id, sender_id, recipient_id, body, read_at, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ListingID, &m.SenderID, &m.RecipientID, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// ListCorrespondents returns the IDs of every user the given user has
// exchanged messages with.
func (r *MessageRepository) ListCorrespondents(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS correspondent
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY correspondent`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query correspondents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan correspondent: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correspondents: %w", err)
	}

	return ids, nil
}

// MarkRead marks a message as read by its recipient. Already-read messages
// keep their original read timestamp.
func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	query := `
		UPDATE messages
		SET read_at = $1
		WHERE id = $2 AND recipient_id = $3 AND read_at IS NULL`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), id, recipientID)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("message", id)
	}

	return nil
}
