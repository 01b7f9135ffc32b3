package repository

import (
	"context"
	"testing"
	"time"

	"foodtruck-market/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpsert_ApprovedRowIsKept(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingDocumentRepository(mock, zap.NewNop())
	now := time.Now()
	bookingID := uuid.New()
	doc := &entity.BookingDocument{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ListingID:    uuid.New(),
		BookingID:    &bookingID,
		RenterID:     uuid.New(),
		DocumentType: "insurance_certificate",
		FileURL:      "https://files.example/doc.pdf",
	}

	// the conflict WHERE clause filters the update, so nothing is returned
	mock.ExpectQuery(`ON CONFLICT \(booking_id, document_type\) DO UPDATE`).
		WithArgs(doc.ID, doc.ListingID, doc.BookingID, doc.RenterID, doc.DocumentType, doc.FileURL, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	stored, err := repo.Upsert(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Stored(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingDocumentRepository(mock, zap.NewNop())
	now := time.Now()
	existingID := uuid.New()
	bookingID := uuid.New()
	doc := &entity.BookingDocument{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ListingID:    uuid.New(),
		BookingID:    &bookingID,
		RenterID:     uuid.New(),
		DocumentType: "drivers_license",
		FileURL:      "https://files.example/license.png",
	}

	mock.ExpectQuery(`INSERT INTO booking_documents`).
		WithArgs(doc.ID, doc.ListingID, doc.BookingID, doc.RenterID, doc.DocumentType, doc.FileURL, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(existingID, now))

	stored, err := repo.Upsert(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, existingID, doc.ID)
	assert.Equal(t, entity.DocumentStatusPending, doc.Status)
}

func TestReview_OnlyFromPending(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingDocumentRepository(mock, zap.NewNop())
	id := uuid.New()

	mock.ExpectExec(`(?s)UPDATE booking_documents.*WHERE id = \$1 AND status = 'pending'`).
		WithArgs(id, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	applied, err := repo.Review(context.Background(), id, entity.DocumentStatusApproved, uuid.New(), time.Now(), nil)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestFindApprovedTypes(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingDocumentRepository(mock, zap.NewNop())
	renterID := uuid.New()
	since := time.Now().AddDate(0, 0, -365)
	types := []string{"insurance_certificate", "food_handler_permit"}

	mock.ExpectQuery(`status = 'approved'\s+AND reviewed_at >= \$3`).
		WithArgs(renterID, types, since).
		WillReturnRows(pgxmock.NewRows([]string{"document_type"}).AddRow("insurance_certificate"))

	found, err := repo.FindApprovedTypes(context.Background(), renterID, types, since)
	require.NoError(t, err)
	assert.Equal(t, []string{"insurance_certificate"}, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DraftUsesListingConflictTarget(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingDocumentRepository(mock, zap.NewNop())
	now := time.Now()
	doc := &entity.BookingDocument{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ListingID:    uuid.New(),
		RenterID:     uuid.New(),
		DocumentType: "insurance_certificate",
		FileURL:      "https://files.example/doc.pdf",
	}

	mock.ExpectQuery(`ON CONFLICT \(listing_id, renter_id, document_type\) WHERE booking_id IS NULL DO UPDATE`).
		WithArgs(doc.ID, doc.ListingID, doc.BookingID, doc.RenterID, doc.DocumentType, doc.FileURL, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(doc.ID, now))

	stored, err := repo.Upsert(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, doc.IsDraft())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdoptDrafts(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingDocumentRepository(mock, zap.NewNop())
	listingID, renterID, bookingID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectExec(`(?s)UPDATE booking_documents\s+SET booking_id = \$3.*booking_id IS NULL`).
		WithArgs(listingID, renterID, bookingID, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	adopted, err := repo.AdoptDrafts(context.Background(), listingID, renterID, bookingID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), adopted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPendingTypes_ScopedToListingDrafts(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingDocumentRepository(mock, zap.NewNop())
	listingID, renterID := uuid.New(), uuid.New()
	since := time.Now().AddDate(0, 0, -365)
	types := []string{"insurance_certificate"}

	mock.ExpectQuery(`(?s)status = 'pending'.*listing_id = \$4\s+AND booking_id IS NULL`).
		WithArgs(renterID, types, since, listingID).
		WillReturnRows(pgxmock.NewRows([]string{"document_type"}).AddRow("insurance_certificate"))

	found, err := repo.FindPendingTypes(context.Background(), listingID, renterID, types, since)
	require.NoError(t, err)
	assert.Equal(t, []string{"insurance_certificate"}, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
