package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents a classified advertisement posted by a user.
type Listing struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	NetPrice    decimal.Decimal `json:"net_price"`
	ImageURL    string          `json:"image_url,omitempty"`
	PublishedAt time.Time       `json:"published_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ApplyPricing recomputes the listing's net price from its price and
// discount percentage.
func (l *Listing) ApplyPricing() {
	l.NetPrice = NetPrice(l.Price, l.Discount)
}

// ListingFilter holds the search criteria for listing queries. ExcludeUserID
// drops one user's listings from the results, which is how a browsing user
// sees everyone's listings but their own.
type ListingFilter struct {
	UserID        string
	ExcludeUserID string
	CategoryID    string
	Query         string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Limit         int
	Offset        int
}
