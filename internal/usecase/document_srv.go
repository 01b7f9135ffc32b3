package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/internal/dto/request"
	"foodtruck-market/internal/dto/response"
	"foodtruck-market/internal/notify"
	"foodtruck-market/internal/storage"
	"foodtruck-market/pkg/metrics"
	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentService stores renter uploads and host reviews. Uploads made before a
// booking request exists are drafts scoped to (listing, renter); the next
// request for that listing adopts them.
type DocumentService interface {
	Upload(ctx context.Context, renterID, bookingID uuid.UUID, req *request.UploadDocumentRequest) (*response.BookingDocumentResponse, error)
	UploadForListing(ctx context.Context, renterID, listingID uuid.UUID, req *request.UploadDocumentRequest) (*response.BookingDocumentResponse, error)
	ListListingDocuments(ctx context.Context, renterID, listingID uuid.UUID) ([]response.BookingDocumentResponse, error)
	Review(ctx context.Context, hostID, documentID uuid.UUID, req *request.ReviewDocumentRequest) (*response.BookingDocumentResponse, error)
	ListBookingDocuments(ctx context.Context, userID, bookingID uuid.UUID) ([]response.BookingDocumentResponse, error)
}

type documentService struct {
	repo     *repository.Repository
	uploader storage.Uploader
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
	log      *zap.Logger
}

func NewDocumentService(
	repo *repository.Repository,
	uploader storage.Uploader,
	notifier Notifier,
	m *metrics.Metrics,
	log *zap.Logger,
) DocumentService {
	return &documentService{
		repo:     repo,
		uploader: uploader,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
		log:      log.With(zap.String("service", "document")),
	}
}

func (s *documentService) Upload(ctx context.Context, renterID, bookingID uuid.UUID, req *request.UploadDocumentRequest) (*response.BookingDocumentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Upload validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	booking, err := s.booking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, fmt.Errorf("%w: only the renter can upload documents", ErrForbidden)
	}
	if !booking.AcceptsDocuments() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidState, booking.Status)
	}

	required, err := s.requiredDocument(ctx, booking.ListingID, req.DocumentType)
	if err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusApproved && required.DeadlinePhase != entity.PhaseAfterApproval {
		return nil, fmt.Errorf("%w: %s was due before approval", ErrInvalidState, req.DocumentType)
	}

	key := path.Join("bookings", booking.ID.String(), req.DocumentType,
		uuid.New().String()+strings.ToLower(path.Ext(req.FileName)))
	return s.store(ctx, key, booking.ListingID, &booking.ID, renterID, req)
}

// UploadForListing files a draft for a listing the renter has not requested yet
func (s *documentService) UploadForListing(ctx context.Context, renterID, listingID uuid.UUID, req *request.UploadDocumentRequest) (*response.BookingDocumentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Draft upload validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil || !listing.IsActive {
		return nil, ErrListingNotFound
	}
	if listing.HostID == renterID {
		return nil, fmt.Errorf("%w: hosts do not upload renter documents", ErrForbidden)
	}

	if _, err := s.requiredDocument(ctx, listingID, req.DocumentType); err != nil {
		return nil, err
	}

	key := path.Join("listings", listingID.String(), "renters", renterID.String(), req.DocumentType,
		uuid.New().String()+strings.ToLower(path.Ext(req.FileName)))
	return s.store(ctx, key, listingID, nil, renterID, req)
}

func (s *documentService) store(
	ctx context.Context,
	key string,
	listingID uuid.UUID,
	bookingID *uuid.UUID,
	renterID uuid.UUID,
	req *request.UploadDocumentRequest,
) (*response.BookingDocumentResponse, error) {
	fileURL, err := s.uploader.Upload(ctx, key, req.File, req.Size, req.ContentType)
	if err != nil {
		s.log.Error("Failed to store document", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("store document: %w", err)
	}

	now := s.now()
	doc := &entity.BookingDocument{
		BaseNoDelete: entity.NewBaseNoDelete(uuid.New(), now),
		ListingID:    listingID,
		BookingID:    bookingID,
		RenterID:     renterID,
		DocumentType: req.DocumentType,
		FileURL:      fileURL,
		Status:       entity.DocumentStatusPending,
	}

	stored, err := s.repo.BookingDocument.Upsert(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if !stored {
		return nil, fmt.Errorf("%w: %s is already approved", ErrInvalidState, req.DocumentType)
	}

	s.log.Info("Document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("listing_id", listingID.String()),
		zap.Bool("draft", doc.IsDraft()),
		zap.String("document_type", doc.DocumentType),
	)

	resp := response.BookingDocumentToResponse(doc)
	return &resp, nil
}

// requiredDocument returns the listing's requirement for docType in any phase
func (s *documentService) requiredDocument(ctx context.Context, listingID uuid.UUID, docType string) (*entity.RequiredDocument, error) {
	reqs, err := s.repo.RequiredDocument.FindByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load required documents: %w", err)
	}
	for _, r := range reqs {
		if r.DocumentType == docType {
			return r, nil
		}
	}
	return nil, fieldError("DocumentType", "Not required by this listing")
}

func (s *documentService) Review(ctx context.Context, hostID, documentID uuid.UUID, req *request.ReviewDocumentRequest) (*response.BookingDocumentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Review validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}
	if req.Decision == string(entity.DocumentStatusRejected) && (req.Reason == nil || strings.TrimSpace(*req.Reason) == "") {
		return nil, fieldError("Reason", "Required when rejecting a document")
	}

	doc, err := s.repo.BookingDocument.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	var bookingID uuid.UUID
	if doc.IsDraft() {
		listing, err := s.repo.Listing.FindByID(ctx, doc.ListingID)
		if err != nil {
			return nil, fmt.Errorf("load listing: %w", err)
		}
		if listing == nil {
			return nil, ErrListingNotFound
		}
		if listing.HostID != hostID {
			return nil, fmt.Errorf("%w: only the host can review documents", ErrForbidden)
		}
	} else {
		booking, err := s.booking(ctx, *doc.BookingID)
		if err != nil {
			return nil, err
		}
		if booking.HostID != hostID {
			return nil, fmt.Errorf("%w: only the host can review documents", ErrForbidden)
		}
		if !booking.AcceptsDocuments() {
			return nil, fmt.Errorf("%w: booking is %s", ErrInvalidState, booking.Status)
		}
		bookingID = booking.ID
	}
	if doc.Status != entity.DocumentStatusPending {
		return nil, fmt.Errorf("%w: document is %s", ErrInvalidState, doc.Status)
	}

	status := entity.DocumentStatus(req.Decision)
	var reason *string
	if status == entity.DocumentStatusRejected {
		reason = req.Reason
	}
	now := s.now()

	applied, err := s.repo.BookingDocument.Review(ctx, doc.ID, status, hostID, now, reason)
	if err != nil {
		return nil, fmt.Errorf("review document: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: document was reviewed concurrently", ErrInvalidState)
	}

	doc.Status = status
	doc.ReviewedAt = &now
	doc.ReviewerID = &hostID
	doc.RejectionReason = reason
	doc.UpdatedAt = now

	s.metrics.DocumentReview(string(status))
	s.log.Info("Document reviewed",
		zap.String("document_id", doc.ID.String()),
		zap.String("listing_id", doc.ListingID.String()),
		zap.String("status", string(status)),
	)

	if s.notifier != nil {
		data := map[string]string{
			"document_type": doc.DocumentType,
			"status":        string(status),
		}
		if reason != nil {
			data["reason"] = *reason
		}
		s.notifier.Send(notify.Notification{
			Type:        notify.TypeDocumentReviewed,
			RecipientID: doc.RenterID,
			BookingID:   bookingID,
			ListingID:   doc.ListingID,
			Data:        data,
		})
	}

	resp := response.BookingDocumentToResponse(doc)
	return &resp, nil
}

func (s *documentService) ListBookingDocuments(ctx context.Context, userID, bookingID uuid.UUID) ([]response.BookingDocumentResponse, error) {
	booking, err := s.booking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != userID && booking.HostID != userID {
		return nil, ErrForbidden
	}

	docs, err := s.repo.BookingDocument.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return documentsToResponse(docs), nil
}

// ListListingDocuments returns the renter's drafts for the listing
func (s *documentService) ListListingDocuments(ctx context.Context, renterID, listingID uuid.UUID) ([]response.BookingDocumentResponse, error) {
	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	docs, err := s.repo.BookingDocument.FindDrafts(ctx, listingID, renterID)
	if err != nil {
		return nil, fmt.Errorf("list draft documents: %w", err)
	}

	return documentsToResponse(docs), nil
}

func documentsToResponse(docs []*entity.BookingDocument) []response.BookingDocumentResponse {
	out := make([]response.BookingDocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = response.BookingDocumentToResponse(d)
	}
	return out
}

func (s *documentService) booking(ctx context.Context, id uuid.UUID) (*entity.BookingRequest, error) {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}
