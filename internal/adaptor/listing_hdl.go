package adaptor

import (
	"encoding/json"
	"net/http"

	"foodtruck-market/internal/dto/request"
	"foodtruck-market/internal/usecase"
	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListingHandler struct {
	service usecase.ListingService
	log     *zap.Logger
}

func NewListingHandler(service usecase.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log.With(zap.String("handler", "listing")),
	}
}

// CreateListing handles POST /api/listings (host)
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	hostID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req request.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	listing, err := h.service.CreateListing(r.Context(), hostID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create listing", nil)
		return
	}

	utils.ResponseCreated(w, "success", listing)
}

// GetListings handles GET /api/listings
func (h *ListingHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ListListingsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
	}
	if category := query.Get("category"); category != "" {
		req.Category = &category
	}

	listings, err := h.service.ListListings(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list listings", nil)
		return
	}

	utils.ResponseSuccess(w, "success", listings)
}

// GetListing handles GET /api/listings/{listingID}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, ok := parseIDParam(w, r, "listingID")
	if !ok {
		return
	}

	listing, err := h.service.GetListing(r.Context(), listingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get listing", nil)
		return
	}

	utils.ResponseSuccess(w, "success", listing)
}

// SetRequiredDocuments handles PUT /api/listings/{listingID}/required-documents (host)
func (h *ListingHandler) SetRequiredDocuments(w http.ResponseWriter, r *http.Request) {
	hostID, ok := requireUser(w, r)
	if !ok {
		return
	}
	listingID, ok := parseIDParam(w, r, "listingID")
	if !ok {
		return
	}

	var req request.SetRequiredDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	docs, err := h.service.SetRequiredDocuments(r.Context(), hostID, listingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "set required documents", nil)
		return
	}

	utils.ResponseSuccess(w, "success", docs)
}

// DocumentRequirements handles GET /api/listings/{listingID}/document-requirements.
// Anonymous callers get the requirements without an on-file check.
func (h *ListingHandler) DocumentRequirements(w http.ResponseWriter, r *http.Request) {
	listingID, ok := parseIDParam(w, r, "listingID")
	if !ok {
		return
	}

	var renterID *uuid.UUID
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		renterID = &userID
	}

	resp, err := h.service.DocumentRequirements(r.Context(), listingID, renterID)
	if err != nil {
		handleServiceError(w, h.log, err, "document requirements", nil)
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
