package repository

import (
	"context"
	"errors"
	"fmt"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
	FindAll(ctx context.Context, category *entity.ListingCategory, limit, offset int) ([]*entity.Listing, error)
	CountAll(ctx context.Context, category *entity.ListingCategory) (int64, error)
}

type listingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewListingRepository(db database.PgxIface, log *zap.Logger) ListingRepository {
	return &listingRepository{
		db:  db,
		log: log.With(zap.String("repository", "listing")),
	}
}

const listingColumns = `id, host_id, title, description, category, city, daily_rate, weekly_rate,
		       instant_book, is_active, created_at, updated_at`

func scanListing(row pgx.Row) (*entity.Listing, error) {
	var l entity.Listing
	err := row.Scan(
		&l.ID,
		&l.HostID,
		&l.Title,
		&l.Description,
		&l.Category,
		&l.City,
		&l.DailyRate,
		&l.WeeklyRate,
		&l.InstantBook,
		&l.IsActive,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	query := `
		INSERT INTO listings (id, host_id, title, description, category, city, daily_rate,
		                      weekly_rate, instant_book, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		listing.ID,
		listing.HostID,
		listing.Title,
		listing.Description,
		listing.Category,
		listing.City,
		listing.DailyRate,
		listing.WeeklyRate,
		listing.InstantBook,
		listing.IsActive,
		listing.CreatedAt,
		listing.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create listing",
			zap.Error(err),
			zap.String("host_id", listing.HostID.String()),
			zap.String("title", listing.Title),
		)
		return fmt.Errorf("create listing %s: %w", listing.Title, err)
	}

	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find listing by ID",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return nil, fmt.Errorf("find listing by ID %s: %w", id.String(), err)
	}

	return listing, nil
}

// FindAll lists active listings, newest first, optionally narrowed to one category
func (r *listingRepository) FindAll(ctx context.Context, category *entity.ListingCategory, limit, offset int) ([]*entity.Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE is_active AND ($1::text IS NULL OR category = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, category, limit, offset)
	if err != nil {
		r.log.Error("Failed to get all listings",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all listings limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var listings []*entity.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			r.log.Error("Failed to scan listing row", zap.Error(err))
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	return listings, nil
}

func (r *listingRepository) CountAll(ctx context.Context, category *entity.ListingCategory) (int64, error) {
	query := `SELECT COUNT(*) FROM listings WHERE is_active AND ($1::text IS NULL OR category = $1)`

	var count int64
	if err := r.db.QueryRow(ctx, query, category).Scan(&count); err != nil {
		r.log.Error("Database error counting listings", zap.Error(err))
		return 0, fmt.Errorf("count all listings: %w", err)
	}

	return count, nil
}
