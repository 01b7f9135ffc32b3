package usecase

import (
	"context"
	"fmt"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/internal/dto/request"
	"foodtruck-market/internal/dto/response"
	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListingService interface {
	CreateListing(ctx context.Context, hostID uuid.UUID, req *request.CreateListingRequest) (*response.ListingResponse, error)
	GetListing(ctx context.Context, id uuid.UUID) (*response.ListingResponse, error)
	ListListings(ctx context.Context, req *request.ListListingsRequest) (*response.PaginatedResponse[response.ListingResponse], error)
	SetRequiredDocuments(ctx context.Context, hostID, listingID uuid.UUID, req *request.SetRequiredDocumentsRequest) ([]response.RequiredDocumentResponse, error)
	DocumentRequirements(ctx context.Context, listingID uuid.UUID, renterID *uuid.UUID) (*response.DocumentRequirementsResponse, error)
}

type listingService struct {
	repo *repository.Repository
	gate *DocumentGate
	log  *zap.Logger
}

func NewListingService(repo *repository.Repository, gate *DocumentGate, log *zap.Logger) ListingService {
	return &listingService{
		repo: repo,
		gate: gate,
		log:  log.With(zap.String("service", "listing")),
	}
}

func (s *listingService) CreateListing(ctx context.Context, hostID uuid.UUID, req *request.CreateListingRequest) (*response.ListingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create listing validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	now := time.Now()
	listing := &entity.Listing{
		BaseNoDelete: entity.NewBaseNoDelete(uuid.New(), now),
		HostID:       hostID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     entity.ListingCategory(req.Category),
		City:         req.City,
		DailyRate:    req.DailyRate,
		WeeklyRate:   req.WeeklyRate,
		InstantBook:  req.InstantBook,
		IsActive:     true,
	}

	docs, err := buildRequiredDocuments(listing.ID, req.RequiredDocuments, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Listing.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	if len(docs) > 0 {
		if err := s.repo.RequiredDocument.ReplaceForListing(ctx, listing.ID, docs); err != nil {
			return nil, fmt.Errorf("save required documents: %w", err)
		}
	}

	s.log.Info("Listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("host_id", hostID.String()),
		zap.Int("required_documents", len(docs)),
	)

	resp := response.ListingToResponse(listing, docs)
	return &resp, nil
}

func (s *listingService) GetListing(ctx context.Context, id uuid.UUID) (*response.ListingResponse, error) {
	listing, err := s.repo.Listing.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	docs, err := s.repo.RequiredDocument.FindByListingID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load required documents: %w", err)
	}

	resp := response.ListingToResponse(listing, docs)
	return &resp, nil
}

func (s *listingService) ListListings(ctx context.Context, req *request.ListListingsRequest) (*response.PaginatedResponse[response.ListingResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	var category *entity.ListingCategory
	if req.Category != nil {
		c := entity.ListingCategory(*req.Category)
		category = &c
	}

	listings, err := s.repo.Listing.FindAll(ctx, category, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	total, err := s.repo.Listing.CountAll(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	out := make([]response.ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = response.ListingToResponse(l, nil)
	}

	return response.NewPaginatedResponse(out, req.Page, req.PerPage, total), nil
}

func (s *listingService) SetRequiredDocuments(ctx context.Context, hostID, listingID uuid.UUID, req *request.SetRequiredDocumentsRequest) ([]response.RequiredDocumentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.HostID != hostID {
		return nil, fmt.Errorf("%w: not your listing", ErrForbidden)
	}

	docs, err := buildRequiredDocuments(listingID, req.Documents, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.RequiredDocument.ReplaceForListing(ctx, listingID, docs); err != nil {
		return nil, fmt.Errorf("save required documents: %w", err)
	}

	s.log.Info("Required documents updated",
		zap.String("listing_id", listingID.String()),
		zap.Int("count", len(docs)),
	)

	return response.RequiredDocumentsToResponse(docs), nil
}

func (s *listingService) DocumentRequirements(ctx context.Context, listingID uuid.UUID, renterID *uuid.UUID) (*response.DocumentRequirementsResponse, error) {
	reqs, evals, err := s.gate.EvaluateAll(ctx, listingID, renterID)
	if err != nil {
		return nil, err
	}

	resp := &response.DocumentRequirementsResponse{
		ListingID:    listingID.String(),
		Requirements: response.RequiredDocumentsToResponse(reqs),
		Phases:       make([]response.GateResponse, len(evals)),
	}
	for i, e := range evals {
		resp.Phases[i] = response.GateResponse{
			Phase:         e.Phase,
			RequiredTypes: nonNil(e.RequiredTypes),
			OnFile:        e.OnFile,
			Uploaded:      e.Uploaded,
			Missing:       e.Missing,
			Blocking:      e.Blocking,
			Evaluable:     e.Evaluable,
		}
	}
	return resp, nil
}

func buildRequiredDocuments(listingID uuid.UUID, in []request.RequiredDocumentRequest, now time.Time) ([]*entity.RequiredDocument, error) {
	seen := make(map[string]bool, len(in))
	docs := make([]*entity.RequiredDocument, 0, len(in))
	for _, r := range in {
		if seen[r.DocumentType] {
			return nil, fieldError("DocumentType", fmt.Sprintf("%s is listed more than once", r.DocumentType))
		}
		seen[r.DocumentType] = true
		docs = append(docs, &entity.RequiredDocument{
			BaseSimple:    entity.NewBaseSimple(uuid.New(), now),
			ListingID:     listingID,
			DocumentType:  r.DocumentType,
			DeadlinePhase: entity.DeadlinePhase(r.DeadlinePhase),
			Description:   r.Description,
		})
	}
	return docs, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
