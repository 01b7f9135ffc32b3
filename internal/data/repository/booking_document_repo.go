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

type BookingDocumentRepository interface {
	// Upsert stores a pending upload for (booking, type), or for
	// (listing, renter, type) when the document is a draft. An approved row
	// is never replaced; in that case it reports false.
	Upsert(ctx context.Context, doc *entity.BookingDocument) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BookingDocument, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingDocument, error)
	FindDrafts(ctx context.Context, listingID, renterID uuid.UUID) ([]*entity.BookingDocument, error)

	// AdoptDrafts attaches the renter's drafts for the listing to bookingID
	AdoptDrafts(ctx context.Context, listingID, renterID, bookingID uuid.UUID, now time.Time) (int64, error)

	// Review moves a pending document to approved or rejected; false if it was no longer pending
	Review(ctx context.Context, id uuid.UUID, status entity.DocumentStatus, reviewerID uuid.UUID, reviewedAt time.Time, reason *string) (bool, error)

	// FindApprovedTypes returns which of types the renter has approved with reviewed_at >= since
	FindApprovedTypes(ctx context.Context, renterID uuid.UUID, types []string, since time.Time) ([]string, error)
	// FindPendingTypes returns which of types the renter has sent as drafts for
	// the listing since the cutoff and that still await review
	FindPendingTypes(ctx context.Context, listingID, renterID uuid.UUID, types []string, since time.Time) ([]string, error)
}

type bookingDocumentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingDocumentRepository(db database.PgxIface, log *zap.Logger) BookingDocumentRepository {
	return &bookingDocumentRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_document")),
	}
}

const bookingDocumentColumns = `id, listing_id, booking_id, renter_id, document_type, file_url, status,
		       reviewed_at, reviewer_id, rejection_reason, created_at, updated_at`

func scanBookingDocument(row pgx.Row) (*entity.BookingDocument, error) {
	var d entity.BookingDocument
	err := row.Scan(
		&d.ID,
		&d.ListingID,
		&d.BookingID,
		&d.RenterID,
		&d.DocumentType,
		&d.FileURL,
		&d.Status,
		&d.ReviewedAt,
		&d.ReviewerID,
		&d.RejectionReason,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const upsertDocumentSet = `
		SET file_url = EXCLUDED.file_url,
		    status = 'pending',
		    reviewed_at = NULL,
		    reviewer_id = NULL,
		    rejection_reason = NULL,
		    updated_at = EXCLUDED.updated_at
		WHERE booking_documents.status <> 'approved'
		RETURNING id, created_at
	`

func (r *bookingDocumentRepository) Upsert(ctx context.Context, doc *entity.BookingDocument) (bool, error) {
	conflict := `ON CONFLICT (booking_id, document_type) DO UPDATE`
	if doc.IsDraft() {
		conflict = `ON CONFLICT (listing_id, renter_id, document_type) WHERE booking_id IS NULL DO UPDATE`
	}

	query := `
		INSERT INTO booking_documents (id, listing_id, booking_id, renter_id, document_type, file_url, status,
		                               created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8)
		` + conflict + upsertDocumentSet

	err := r.db.QueryRow(ctx, query,
		doc.ID,
		doc.ListingID,
		doc.BookingID,
		doc.RenterID,
		doc.DocumentType,
		doc.FileURL,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to upsert booking document",
			zap.Error(err),
			zap.String("listing_id", doc.ListingID.String()),
			zap.Bool("draft", doc.IsDraft()),
			zap.String("document_type", doc.DocumentType),
		)
		return false, fmt.Errorf("upsert booking document %s: %w", doc.DocumentType, err)
	}

	doc.Status = entity.DocumentStatusPending
	doc.ReviewedAt = nil
	doc.ReviewerID = nil
	doc.RejectionReason = nil
	return true, nil
}

func (r *bookingDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BookingDocument, error) {
	query := `SELECT ` + bookingDocumentColumns + ` FROM booking_documents WHERE id = $1`

	doc, err := scanBookingDocument(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking document by ID",
			zap.Error(err),
			zap.String("document_id", id.String()),
		)
		return nil, fmt.Errorf("find booking document by ID %s: %w", id.String(), err)
	}

	return doc, nil
}

func (r *bookingDocumentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingDocument, error) {
	query := `SELECT ` + bookingDocumentColumns + `
		FROM booking_documents
		WHERE booking_id = $1
		ORDER BY document_type
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking documents",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find documents for booking %s: %w", bookingID.String(), err)
	}

	return r.collect(rows)
}

func (r *bookingDocumentRepository) FindDrafts(ctx context.Context, listingID, renterID uuid.UUID) ([]*entity.BookingDocument, error) {
	query := `SELECT ` + bookingDocumentColumns + `
		FROM booking_documents
		WHERE listing_id = $1 AND renter_id = $2 AND booking_id IS NULL
		ORDER BY document_type
	`

	rows, err := r.db.Query(ctx, query, listingID, renterID)
	if err != nil {
		r.log.Error("Failed to find draft documents",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
			zap.String("renter_id", renterID.String()),
		)
		return nil, fmt.Errorf("find draft documents for listing %s: %w", listingID.String(), err)
	}

	return r.collect(rows)
}

func (r *bookingDocumentRepository) collect(rows pgx.Rows) ([]*entity.BookingDocument, error) {
	defer rows.Close()

	var docs []*entity.BookingDocument
	for rows.Next() {
		doc, err := scanBookingDocument(rows)
		if err != nil {
			r.log.Error("Failed to scan booking document row", zap.Error(err))
			return nil, fmt.Errorf("scan booking document row: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking document rows: %w", err)
	}

	return docs, nil
}

func (r *bookingDocumentRepository) AdoptDrafts(ctx context.Context, listingID, renterID, bookingID uuid.UUID, now time.Time) (int64, error) {
	query := `
		UPDATE booking_documents
		SET booking_id = $3, updated_at = $4
		WHERE listing_id = $1 AND renter_id = $2 AND booking_id IS NULL
	`

	result, err := r.db.Exec(ctx, query, listingID, renterID, bookingID, now)
	if err != nil {
		r.log.Error("Failed to adopt draft documents",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, fmt.Errorf("adopt drafts into booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *bookingDocumentRepository) Review(ctx context.Context, id uuid.UUID, status entity.DocumentStatus, reviewerID uuid.UUID, reviewedAt time.Time, reason *string) (bool, error) {
	query := `
		UPDATE booking_documents
		SET status = $2, reviewer_id = $3, reviewed_at = $4, rejection_reason = $5, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id, status, reviewerID, reviewedAt, reason)
	if err != nil {
		r.log.Error("Failed to review booking document",
			zap.Error(err),
			zap.String("document_id", id.String()),
			zap.String("status", string(status)),
		)
		return false, fmt.Errorf("review booking document %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingDocumentRepository) FindApprovedTypes(ctx context.Context, renterID uuid.UUID, types []string, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT document_type
		FROM booking_documents
		WHERE renter_id = $1
		  AND document_type = ANY($2)
		  AND status = 'approved'
		  AND reviewed_at >= $3
	`
	return r.findTypes(ctx, "approved", query, renterID, types, since)
}

func (r *bookingDocumentRepository) FindPendingTypes(ctx context.Context, listingID, renterID uuid.UUID, types []string, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT document_type
		FROM booking_documents
		WHERE renter_id = $1
		  AND document_type = ANY($2)
		  AND status = 'pending'
		  AND updated_at >= $3
		  AND listing_id = $4
		  AND booking_id IS NULL
	`
	return r.findTypes(ctx, "pending", query, renterID, types, since, listingID)
}

func (r *bookingDocumentRepository) findTypes(ctx context.Context, kind, query string, renterID uuid.UUID, types []string, since time.Time, extra ...any) ([]string, error) {
	args := append([]any{renterID, types, since}, extra...)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find document types",
			zap.Error(err),
			zap.String("kind", kind),
			zap.String("renter_id", renterID.String()),
		)
		return nil, fmt.Errorf("find %s document types for renter %s: %w", kind, renterID.String(), err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan document type: %w", err)
		}
		found = append(found, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document types: %w", err)
	}

	return found, nil
}
