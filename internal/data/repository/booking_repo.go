package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.BookingRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BookingRequest, error)
	FindByRenterID(ctx context.Context, renterID uuid.UUID, limit, offset int) ([]*entity.BookingRequest, error)
	CountByRenterID(ctx context.Context, renterID uuid.UUID) (int64, error)
	FindByHostID(ctx context.Context, hostID uuid.UUID, status *entity.BookingStatus, limit, offset int) ([]*entity.BookingRequest, error)
	CountByHostID(ctx context.Context, hostID uuid.UUID, status *entity.BookingStatus) (int64, error)

	// FindExpiredHolds returns pending bookings whose hold deadline is before now
	FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*entity.BookingRequest, error)

	// Claim marks a held row as being resolved by token until the given time.
	// It reports false when the row is no longer held or another live claim exists.
	Claim(ctx context.Context, id, token uuid.UUID, until, now time.Time) (bool, error)
	ReleaseClaim(ctx context.Context, id, token uuid.UUID) error

	// TransitionFromHeld applies t only if the row is still pending/held.
	// It reports false when another caller already moved the row.
	TransitionFromHeld(ctx context.Context, id uuid.UUID, t entity.BookingTransition) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, listing_id, renter_id, host_id, start_date, end_date, total_price,
		       fulfillment_type, status, hold_status, payment_status, payment_intent_id,
		       hold_expires_at, is_instant_book, host_response, responded_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.BookingRequest, error) {
	var b entity.BookingRequest
	err := row.Scan(
		&b.ID,
		&b.ListingID,
		&b.RenterID,
		&b.HostID,
		&b.StartDate,
		&b.EndDate,
		&b.TotalPrice,
		&b.FulfillmentType,
		&b.Status,
		&b.HoldStatus,
		&b.PaymentStatus,
		&b.PaymentIntentID,
		&b.HoldExpiresAt,
		&b.IsInstantBook,
		&b.HostResponse,
		&b.RespondedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.BookingRequest, error) {
	defer rows.Close()

	var bookings []*entity.BookingRequest
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.BookingRequest) error {
	query := `
		INSERT INTO booking_requests (id, listing_id, renter_id, host_id, start_date, end_date,
		                              total_price, fulfillment_type, status, hold_status, payment_status,
		                              payment_intent_id, hold_expires_at, is_instant_book, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.ListingID,
		booking.RenterID,
		booking.HostID,
		booking.StartDate,
		booking.EndDate,
		booking.TotalPrice,
		booking.FulfillmentType,
		booking.Status,
		booking.HoldStatus,
		booking.PaymentStatus,
		booking.PaymentIntentID,
		booking.HoldExpiresAt,
		booking.IsInstantBook,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("renter_id", booking.RenterID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, limit, offset int) ([]*entity.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE renter_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, renterID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by renter ID",
			zap.Error(err),
			zap.String("renter_id", renterID.String()),
		)
		return nil, fmt.Errorf("find bookings by renter ID %s: %w", renterID.String(), err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) CountByRenterID(ctx context.Context, renterID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM booking_requests WHERE renter_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, renterID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by renter ID",
			zap.Error(err),
			zap.String("renter_id", renterID.String()),
		)
		return 0, fmt.Errorf("count bookings by renter ID %s: %w", renterID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, status *entity.BookingStatus, limit, offset int) ([]*entity.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE host_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, hostID, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by host ID",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return nil, fmt.Errorf("find bookings by host ID %s: %w", hostID.String(), err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) CountByHostID(ctx context.Context, hostID uuid.UUID, status *entity.BookingStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM booking_requests WHERE host_id = $1 AND ($2::text IS NULL OR status = $2)`

	var count int64
	if err := r.db.QueryRow(ctx, query, hostID, status).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by host ID",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return 0, fmt.Errorf("count bookings by host ID %s: %w", hostID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*entity.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + `
		FROM booking_requests
		WHERE status = 'pending' AND hold_status = 'held' AND hold_expires_at < $1
		  AND (claimed_until IS NULL OR claimed_until < $1)
		ORDER BY hold_expires_at
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		r.log.Error("Failed to find expired holds", zap.Error(err), zap.Time("now", now))
		return nil, fmt.Errorf("find expired holds: %w", err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) Claim(ctx context.Context, id, token uuid.UUID, until, now time.Time) (bool, error) {
	query := `
		UPDATE booking_requests
		SET claim_token = $2, claimed_until = $3
		WHERE id = $1 AND status = 'pending' AND hold_status = 'held'
		  AND (claimed_until IS NULL OR claimed_until < $4)
	`

	result, err := r.db.Exec(ctx, query, id, token, until, now)
	if err != nil {
		r.log.Error("Failed to claim booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("claim booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) ReleaseClaim(ctx context.Context, id, token uuid.UUID) error {
	query := `
		UPDATE booking_requests
		SET claim_token = NULL, claimed_until = NULL
		WHERE id = $1 AND claim_token = $2
	`

	if _, err := r.db.Exec(ctx, query, id, token); err != nil {
		r.log.Error("Failed to release booking claim",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("release claim on booking %s: %w", id.String(), err)
	}

	return nil
}

func (r *bookingRepository) TransitionFromHeld(ctx context.Context, id uuid.UUID, t entity.BookingTransition) (bool, error) {
	query := `
		UPDATE booking_requests
		SET status = $2, hold_status = $3, payment_status = $4,
		    host_response = COALESCE($5, host_response),
		    responded_at = COALESCE($6, responded_at),
		    updated_at = $7,
		    claim_token = NULL,
		    claimed_until = NULL
		WHERE id = $1 AND status = 'pending' AND hold_status = 'held'
	`

	result, err := r.db.Exec(ctx, query,
		id,
		t.Status,
		t.HoldStatus,
		t.PaymentStatus,
		t.HostResponse,
		t.RespondedAt,
		t.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to transition booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(t.Status)),
			zap.String("hold_status", string(t.HoldStatus)),
		)
		return false, fmt.Errorf("transition booking %s to %s: %w", id.String(), t.Status, err)
	}

	return result.RowsAffected() == 1, nil
}
