package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/adboard/adboard/internal/domain"
	"github.com/adboard/adboard/pkg/database"
	apperrors "github.com/adboard/adboard/pkg/errors"
)

const listingColumns = `id, user_id, category_id, title, description, price::text, discount::text, net_price::text, image_url, published_at, created_at, updated_at`

// ListingRepository implements repository.ListingRepository using PostgreSQL.
type ListingRepository struct {
	db database.DBTX
}

// NewListingRepository creates a new PostgreSQL-backed listing repository.
func NewListingRepository(db database.DBTX) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create inserts a new listing into the database.
func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	query := `
		INSERT INTO listings (id, user_id, category_id, title, description, price, discount, net_price, image_url, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		l.ID,
		l.UserID,
		l.CategoryID,
		l.Title,
		l.Description,
		l.Price.String(),
		l.Discount.String(),
		l.NetPrice.String(),
		l.ImageURL,
		l.PublishedAt,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("category or user does not exist")
		}
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

// GetByID retrieves a listing by its ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	l, err := scanListing(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("listing", id)
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}

	return l, nil
}

// Search returns listings matching the filter and the total match count.
func (r *ListingRepository) Search(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int, error) {
	var (
		conditions []string
		args       []any
	)

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		addCondition("user_id = $%d", filter.UserID)
	}
	if filter.ExcludeUserID != "" {
		addCondition("user_id <> $%d", filter.ExcludeUserID)
	}
	if filter.CategoryID != "" {
		addCondition("category_id = $%d", filter.CategoryID)
	}
	if filter.Query != "" {
		addCondition("(title ILIKE $%d OR description ILIKE '%%' || $%[1]d || '%%')", "%"+filter.Query+"%")
	}
	if filter.MinPrice != nil {
		addCondition("net_price >= $%d", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		addCondition("net_price <= $%d", filter.MaxPrice.String())
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM listings` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := `SELECT ` + listingColumns + ` FROM listings` + where +
		` ORDER BY published_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings, err := collectListings(rows)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// ListIDsByUserID returns the IDs of every listing owned by the user.
func (r *ListingRepository) ListIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM listings WHERE user_id = $1 ORDER BY published_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query listing ids by user: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan listing id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing ids: %w", err)
	}

	return ids, nil
}

// ListPublishedBetween returns listings published in [from, to), ordered by
// user then publication time.
func (r *ListingRepository) ListPublishedBetween(ctx context.Context, from, to time.Time) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE published_at >= $1 AND published_at < $2
		ORDER BY user_id, published_at`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query listings by period: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

// Update modifies an existing listing in the database.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	l.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE listings
		SET category_id = $1, title = $2, description = $3, price = $4, discount = $5,
		    net_price = $6, image_url = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.db.Exec(ctx, query,
		l.CategoryID,
		l.Title,
		l.Description,
		l.Price.String(),
		l.Discount.String(),
		l.NetPrice.String(),
		l.ImageURL,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", l.ID)
	}

	return nil
}

// Delete removes a listing from the database by its ID.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("listing", id)
	}

	return nil
}

// scanListing scans a single listing row, converting numeric columns from
// their text representation.
func scanListing(scan func(dest ...any) error) (*domain.Listing, error) {
	var (
		l        domain.Listing
		price    string
		discount string
		netPrice string
	)

	err := scan(
		&l.ID,
		&l.UserID,
		&l.CategoryID,
		&l.Title,
		&l.Description,
		&price,
		&discount,
		&netPrice,
		&l.ImageURL,
		&l.PublishedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if l.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse listing price: %w", err)
	}
	if l.Discount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("parse listing discount: %w", err)
	}
	if l.NetPrice, err = decimal.NewFromString(netPrice); err != nil {
		return nil, fmt.Errorf("parse listing net price: %w", err)
	}

	return &l, nil
}

func collectListings(rows pgx.Rows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}
