package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FavouriteItem is a single listing saved in a user's favourites. NetPrice is
// a snapshot of the listing's current net price, refreshed every time the
// aggregate is loaded.
type FavouriteItem struct {
	ListingID string          `json:"listing_id"`
	Title     string          `json:"title"`
	NetPrice  decimal.Decimal `json:"net_price"`
	AddedAt   time.Time       `json:"added_at"`
}

// Favourite is a user's favourites collection: an insertion-ordered set of
// listing references plus a cached total of their net prices. The total and
// the membership are persisted together; after any mutation the caller must
// run RecomputeTotal before saving.
type Favourite struct {
	ID     string          `json:"id"`
	UserID string          `json:"user_id"`
	Items  []FavouriteItem `json:"items"`
	Total  decimal.Decimal `json:"total"`

	// Version is the optimistic concurrency token; saves succeed only when
	// the stored version matches.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecomputeTotal sets Total to the sum of the members' net prices truncated
// to cents. Idempotent; safe to call after any membership change.
func (f *Favourite) RecomputeTotal() {
	sum := decimal.Zero
	for _, item := range f.Items {
		sum = sum.Add(item.NetPrice)
	}
	f.Total = TruncateCents(sum)
}

// Contains reports whether the listing is already a member.
func (f *Favourite) Contains(listingID string) bool {
	for i := range f.Items {
		if f.Items[i].ListingID == listingID {
			return true
		}
	}
	return false
}

// Add appends the item to the membership. Uniqueness is not enforced here;
// the service checks Contains before calling Add.
func (f *Favourite) Add(item FavouriteItem) {
	f.Items = append(f.Items, item)
}

// Remove deletes the member with the given listing ID, preserving the order
// of the remaining items. Returns false if the listing was not a member.
func (f *Favourite) Remove(listingID string) bool {
	for i := range f.Items {
		if f.Items[i].ListingID == listingID {
			f.Items = append(f.Items[:i], f.Items[i+1:]...)
			return true
		}
	}
	return false
}
