package domain

import (
	"time"
)

// Message represents a message sent between two users about a listing.
type Message struct {
	ID          string     `json:"id"`
	ListingID   *string    `json:"listing_id,omitempty"`
	SenderID    string     `json:"sender_id"`
	RecipientID string     `json:"recipient_id"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
