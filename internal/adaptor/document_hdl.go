package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodtruck-market/internal/dto/request"
	"foodtruck-market/internal/usecase"
	"foodtruck-market/pkg/utils"

	"go.uber.org/zap"
)

// maxDocumentSize caps a single upload
const maxDocumentSize = 10 << 20

var errNoFile = errors.New("file is required")

type DocumentHandler struct {
	service usecase.DocumentService
	log     *zap.Logger
}

func NewDocumentHandler(service usecase.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		log:     log.With(zap.String("handler", "document")),
	}
}

// UploadDocument handles POST /api/bookings/{bookingID}/documents (renter, multipart)
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	renterID, ok := requireUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(w, r, "bookingID")
	if !ok {
		return
	}

	req, cleanup, ok := parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	doc, err := h.service.Upload(r.Context(), renterID, bookingID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "upload document", nil)
		return
	}

	utils.ResponseCreated(w, "Document uploaded", doc)
}

// UploadListingDocument handles POST /api/listings/{listingID}/documents (renter, multipart).
// The document is kept as a draft until the renter requests the listing.
func (h *DocumentHandler) UploadListingDocument(w http.ResponseWriter, r *http.Request) {
	renterID, ok := requireUser(w, r)
	if !ok {
		return
	}
	listingID, ok := parseIDParam(w, r, "listingID")
	if !ok {
		return
	}

	req, cleanup, ok := parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	doc, err := h.service.UploadForListing(r.Context(), renterID, listingID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "upload listing document", nil)
		return
	}

	utils.ResponseCreated(w, "Document uploaded", doc)
}

// parseUpload reads the multipart form; on failure the response is already written
func parseUpload(w http.ResponseWriter, r *http.Request) (*request.UploadDocumentRequest, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize+1<<20)
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseBadRequest(w, "File too large", map[string]string{"file": "Maximum size is 10MB"})
			return nil, nil, false
		}
		utils.ResponseBadRequest(w, "Invalid multipart form", nil)
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"file": errNoFile.Error()})
		return nil, nil, false
	}

	cleanup := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}
	return &request.UploadDocumentRequest{
		DocumentType: r.FormValue("document_type"),
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		File:         file,
	}, cleanup, true
}

// ReviewDocument handles POST /api/documents/{documentID}/review (host)
func (h *DocumentHandler) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	hostID, ok := requireUser(w, r)
	if !ok {
		return
	}
	documentID, ok := parseIDParam(w, r, "documentID")
	if !ok {
		return
	}

	var req request.ReviewDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	doc, err := h.service.Review(r.Context(), hostID, documentID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "review document", nil)
		return
	}

	utils.ResponseSuccess(w, "success", doc)
}

// GetBookingDocuments handles GET /api/bookings/{bookingID}/documents
func (h *DocumentHandler) GetBookingDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(w, r, "bookingID")
	if !ok {
		return
	}

	docs, err := h.service.ListBookingDocuments(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "list booking documents", nil)
		return
	}

	utils.ResponseSuccess(w, "success", docs)
}

// GetListingDocuments handles GET /api/listings/{listingID}/documents (renter drafts)
func (h *DocumentHandler) GetListingDocuments(w http.ResponseWriter, r *http.Request) {
	renterID, ok := requireUser(w, r)
	if !ok {
		return
	}
	listingID, ok := parseIDParam(w, r, "listingID")
	if !ok {
		return
	}

	docs, err := h.service.ListListingDocuments(r.Context(), renterID, listingID)
	if err != nil {
		handleServiceError(w, h.log, err, "list listing documents", nil)
		return
	}

	utils.ResponseSuccess(w, "success", docs)
}
