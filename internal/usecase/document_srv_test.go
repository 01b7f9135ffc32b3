package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/dto/request"
	"foodtruck-market/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadReq(docType string) *request.UploadDocumentRequest {
	body := "%PDF-1.4 certificate"
	return &request.UploadDocumentRequest{
		DocumentType: docType,
		FileName:     "Certificate.PDF",
		ContentType:  "application/pdf",
		Size:         int64(len(body)),
		File:         strings.NewReader(body),
	}
}

type documentFixture struct {
	*fixture
	host    uuid.UUID
	renter  uuid.UUID
	listing uuid.UUID
	booking *entity.BookingRequest
}

func newDocumentFixture(t *testing.T) *documentFixture {
	f := newFixture(t)
	d := &documentFixture{
		fixture: f,
		host:    f.addUser(entity.RoleHost),
		renter:  f.addUser(entity.RoleRenter),
	}
	d.listing = f.addListing(d.host, 100)
	f.require(d.listing, "insurance_certificate", entity.PhaseBeforeApproval)
	f.require(d.listing, "delivery_signature", entity.PhaseAfterApproval)
	d.booking = f.addHeldBooking(d.listing, d.renter, f.now.Add(time.Hour))
	return d
}

func TestUpload_StoresPendingDocument(t *testing.T) {
	d := newDocumentFixture(t)

	resp, err := d.documents.Upload(context.Background(), d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	require.NoError(t, err)

	assert.Equal(t, entity.DocumentStatusPending, resp.Status)
	require.NotNil(t, resp.BookingID)
	assert.Equal(t, d.booking.ID.String(), *resp.BookingID)
	assert.Equal(t, d.listing.String(), resp.ListingID)
	require.Len(t, d.uploader.keys, 1)
	key := d.uploader.keys[0]
	assert.True(t, strings.HasPrefix(key, "bookings/"+d.booking.ID.String()+"/insurance_certificate/"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)
	assert.Equal(t, "http://files.test/booking-documents/"+key, resp.FileURL)
}

func TestUpload_Rules(t *testing.T) {
	t.Run("only the renter", func(t *testing.T) {
		d := newDocumentFixture(t)
		_, err := d.documents.Upload(context.Background(), d.host, d.booking.ID, uploadReq("insurance_certificate"))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("type must be required by the listing", func(t *testing.T) {
		d := newDocumentFixture(t)
		_, err := d.documents.Upload(context.Background(), d.renter, d.booking.ID, uploadReq("passport"))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty file", func(t *testing.T) {
		d := newDocumentFixture(t)
		req := uploadReq("insurance_certificate")
		req.Size = 0
		_, err := d.documents.Upload(context.Background(), d.renter, d.booking.ID, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("terminal booking is immutable", func(t *testing.T) {
		d := newDocumentFixture(t)
		_, err := d.bookings.Cancel(context.Background(), d.renter, d.booking.ID)
		require.NoError(t, err)

		_, err = d.documents.Upload(context.Background(), d.renter, d.booking.ID, uploadReq("insurance_certificate"))
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("approved booking takes only after-approval types", func(t *testing.T) {
		d := newDocumentFixture(t)
		d.addApprovedDocument(d.renter, "insurance_certificate", d.now)
		_, err := d.bookings.Respond(context.Background(), d.host, d.booking.ID, approveReq())
		require.NoError(t, err)

		_, err = d.documents.Upload(context.Background(), d.renter, d.booking.ID, uploadReq("insurance_certificate"))
		assert.ErrorIs(t, err, ErrInvalidState)

		_, err = d.documents.Upload(context.Background(), d.renter, d.booking.ID, uploadReq("delivery_signature"))
		assert.NoError(t, err)
	})

	t.Run("storage failure stores nothing", func(t *testing.T) {
		d := newDocumentFixture(t)
		d.uploader.err = errProvider

		_, err := d.documents.Upload(context.Background(), d.renter, d.booking.ID, uploadReq("insurance_certificate"))
		assert.ErrorIs(t, err, errProvider)

		docs, err := d.documents.ListBookingDocuments(context.Background(), d.renter, d.booking.ID)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestUpload_ReplacesPendingButNotApproved(t *testing.T) {
	d := newDocumentFixture(t)
	ctx := context.Background()

	first, err := d.documents.Upload(ctx, d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	require.NoError(t, err)
	second, err := d.documents.Upload(ctx, d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.FileURL, second.FileURL)

	_, err = d.documents.Review(ctx, d.host, uuid.MustParse(second.ID), &request.ReviewDocumentRequest{Decision: "approved"})
	require.NoError(t, err)

	_, err = d.documents.Upload(ctx, d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestReview(t *testing.T) {
	d := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := d.documents.Upload(ctx, d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	require.NoError(t, err)
	docID := uuid.MustParse(doc.ID)

	_, err = d.documents.Review(ctx, d.renter, docID, &request.ReviewDocumentRequest{Decision: "approved"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = d.documents.Review(ctx, d.host, docID, &request.ReviewDocumentRequest{Decision: "rejected"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = d.documents.Review(ctx, d.host, uuid.New(), &request.ReviewDocumentRequest{Decision: "approved"})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	resp, err := d.documents.Review(ctx, d.host, docID, &request.ReviewDocumentRequest{Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusApproved, resp.Status)
	assert.NotNil(t, resp.ReviewedAt)

	_, err = d.documents.Review(ctx, d.host, docID, &request.ReviewDocumentRequest{Decision: "approved"})
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, []notify.Type{notify.TypeDocumentReviewed}, d.notifier.to(d.renter))

	// approval now satisfies the gate for this booking
	eval, err := d.gate.Evaluate(ctx, d.listing, &d.renter, entity.PhaseBeforeApproval)
	require.NoError(t, err)
	assert.False(t, eval.Blocking)
}

func TestReview_RejectKeepsReason(t *testing.T) {
	d := newDocumentFixture(t)
	ctx := context.Background()

	doc, err := d.documents.Upload(ctx, d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	require.NoError(t, err)

	resp, err := d.documents.Review(ctx, d.host, uuid.MustParse(doc.ID), &request.ReviewDocumentRequest{
		Decision: "rejected",
		Reason:   strPtr("policy expired"),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DocumentStatusRejected, resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "policy expired", *resp.RejectionReason)

	// a rejected document can be replaced
	again, err := d.documents.Upload(ctx, d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusPending, again.Status)
}

func TestListBookingDocuments(t *testing.T) {
	d := newDocumentFixture(t)
	ctx := context.Background()

	_, err := d.documents.Upload(ctx, d.renter, d.booking.ID, uploadReq("insurance_certificate"))
	require.NoError(t, err)

	for _, viewer := range []uuid.UUID{d.renter, d.host} {
		docs, err := d.documents.ListBookingDocuments(ctx, viewer, d.booking.ID)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	}

	_, err = d.documents.ListBookingDocuments(ctx, uuid.New(), d.booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUploadForListing_StoresDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.addUser(entity.RoleHost)
	renter := f.addUser(entity.RoleRenter)
	listing := f.addListing(host, 100)
	f.require(listing, "insurance_certificate", entity.PhaseBeforeBookingRequest)

	first, err := f.documents.UploadForListing(ctx, renter, listing, uploadReq("insurance_certificate"))
	require.NoError(t, err)
	assert.Nil(t, first.BookingID)
	assert.Equal(t, listing.String(), first.ListingID)
	require.Len(t, f.uploader.keys, 1)
	assert.True(t, strings.HasPrefix(f.uploader.keys[0],
		"listings/"+listing.String()+"/renters/"+renter.String()+"/insurance_certificate/"))
	assert.True(t, strings.HasSuffix(f.uploader.keys[0], ".pdf"))

	// a second draft of the same type replaces the first
	second, err := f.documents.UploadForListing(ctx, renter, listing, uploadReq("insurance_certificate"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	drafts, err := f.documents.ListListingDocuments(ctx, renter, listing)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)

	others, err := f.documents.ListListingDocuments(ctx, f.addUser(entity.RoleRenter), listing)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestUploadForListing_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.addUser(entity.RoleHost)
	renter := f.addUser(entity.RoleRenter)
	listing := f.addListing(host, 100)
	f.require(listing, "insurance_certificate", entity.PhaseBeforeBookingRequest)

	_, err := f.documents.UploadForListing(ctx, renter, uuid.New(), uploadReq("insurance_certificate"))
	assert.ErrorIs(t, err, ErrListingNotFound)

	_, err = f.documents.UploadForListing(ctx, host, listing, uploadReq("insurance_certificate"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.documents.UploadForListing(ctx, renter, listing, uploadReq("passport"))
	assert.ErrorIs(t, err, ErrValidation)

	f.store.listings[listing].IsActive = false
	_, err = f.documents.UploadForListing(ctx, renter, listing, uploadReq("insurance_certificate"))
	assert.ErrorIs(t, err, ErrListingNotFound)
	assert.Empty(t, f.uploader.keys)
}

func TestReview_Draft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.addUser(entity.RoleHost)
	renter := f.addUser(entity.RoleRenter)
	listing := f.addListing(host, 100)
	f.require(listing, "insurance_certificate", entity.PhaseBeforeBookingRequest)

	doc, err := f.documents.UploadForListing(ctx, renter, listing, uploadReq("insurance_certificate"))
	require.NoError(t, err)
	docID := uuid.MustParse(doc.ID)

	_, err = f.documents.Review(ctx, f.addUser(entity.RoleHost), docID, &request.ReviewDocumentRequest{Decision: "approved"})
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := f.documents.Review(ctx, host, docID, &request.ReviewDocumentRequest{Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusApproved, resp.Status)
	assert.Equal(t, []notify.Type{notify.TypeDocumentReviewed}, f.notifier.to(renter))

	// approved drafts are on file for every later phase
	eval, err := f.gate.Evaluate(ctx, listing, &renter, entity.PhaseBeforeApproval)
	require.NoError(t, err)
	assert.False(t, eval.Blocking)

	_, err = f.documents.UploadForListing(ctx, renter, listing, uploadReq("insurance_certificate"))
	assert.ErrorIs(t, err, ErrInvalidState)
}
