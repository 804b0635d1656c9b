package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/pkg/database"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

// FavouriteRepository implements repository.FavouriteRepository using PostgreSQL.
//
// The aggregate is stored across two tables: favourites holds the owner,
// cached total and version; favourite_items holds the members, with a
// position column to preserve insertion order.
type FavouriteRepository struct {
	db database.DBTX
}

// NewFavouriteRepository creates a new PostgreSQL-backed favourites repository.
func NewFavouriteRepository(db database.DBTX) *FavouriteRepository {
	return &FavouriteRepository{db: db}
}

// Create inserts a new, empty favourites aggregate for the given user.
func (r *FavouriteRepository) Create(ctx context.Context, f *domain.Favourite) error {
	query := `
		INSERT INTO favourites (id, user_id, total, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		f.ID,
		f.UserID,
		f.Total.String(),
		f.Version,
		f.CreatedAt,
		f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert favourites: %w", err)
	}

	return nil
}

// GetByUserID retrieves the favourites aggregate owned by the given user,
// including its items ordered by position.
func (r *FavouriteRepository) GetByUserID(ctx context.Context, userID string) (_ *domain.Favourite, err error) {
	query := `
		SELECT id, user_id, total::text, version, created_at, updated_at
		FROM favourites
		WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, "GetFavouriteByUserID", query)
	defer func() { end(err) }()

	var (
		f     domain.Favourite
		total string
	)
	err = r.db.QueryRow(ctx, query, userID).Scan(
		&f.ID,
		&f.UserID,
		&total,
		&f.Version,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan favourites: %w", err)
	}

	f.Total, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse favourites total: %w", err)
	}

	itemsQuery := `
		SELECT listing_id, title, net_price::text, added_at
		FROM favourite_items
		WHERE favourite_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, itemsQuery, f.ID)
	if err != nil {
		return nil, fmt.Errorf("query favourite items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     domain.FavouriteItem
			netPrice string
		)
		if err := rows.Scan(&item.ListingID, &item.Title, &netPrice, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan favourite item: %w", err)
		}
		item.NetPrice, err = decimal.NewFromString(netPrice)
		if err != nil {
			return nil, fmt.Errorf("parse favourite item net price: %w", err)
		}
		f.Items = append(f.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favourite items: %w", err)
	}

	return &f, nil
}

// SaveIfVersion persists the aggregate's items and total inside a single
// transaction, guarded by a version check on the favourites row. It reports
// whether the write was applied.
func (r *FavouriteRepository) SaveIfVersion(ctx context.Context, f *domain.Favourite, expectedVersion int64) (_ bool, err error) {
	ctx, end := database.TraceQuery(ctx, "SaveFavouriteIfVersion", "UPDATE favourites SET total, version WHERE version matches")
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	ct, err := tx.Exec(ctx, `
		UPDATE favourites
		SET total = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		f.Total.String(),
		now,
		f.ID,
		expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("update favourites: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM favourite_items WHERE favourite_id = $1`, f.ID); err != nil {
		return false, fmt.Errorf("delete favourite items: %w", err)
	}

	for i, item := range f.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO favourite_items (favourite_id, listing_id, position, title, net_price, added_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			f.ID,
			item.ListingID,
			i,
			item.Title,
			item.NetPrice.String(),
			item.AddedAt,
		)
		if err != nil {
			return false, fmt.Errorf("insert favourite item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	f.Version = expectedVersion + 1
	f.UpdatedAt = now

	return true, nil
}

// UpdateListingSnapshot rewrites the title and net price snapshot on every
// favourite item referencing the listing. Cached totals are intentionally
// left stale; each aggregate's next read repairs its total.
func (r *FavouriteRepository) UpdateListingSnapshot(ctx context.Context, listingID, title string, netPrice decimal.Decimal) (int, error) {
	query := `
		UPDATE favourite_items
		SET title = $1, net_price = $2
		WHERE listing_id = $3`

	ct, err := r.db.Exec(ctx, query, title, netPrice.String(), listingID)
	if err != nil {
		return 0, fmt.Errorf("update favourite item snapshots: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

// ListUserIDsByListingID returns the owners of every aggregate that
// currently references the given listing.
func (r *FavouriteRepository) ListUserIDsByListingID(ctx context.Context, listingID string) (_ []string, err error) {
	query := `
		SELECT f.user_id
		FROM favourite_items fi
		JOIN favourites f ON f.id = fi.favourite_id
		WHERE fi.listing_id = $1`

	ctx, end := database.TraceQuery(ctx, "ListFavouriteOwnersByListing", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("query favourites by listing: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan favourites owner: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favourites owners: %w", err)
	}

	return userIDs, nil
}
