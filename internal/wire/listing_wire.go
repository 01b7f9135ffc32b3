package wire

import (
	"foodtruck-market/internal/adaptor"
	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireListing(
	r chi.Router,
	listingHandler *adaptor.ListingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/listings", listingHandler.GetListings)
	r.Get("/api/listings/{listingID}", listingHandler.GetListing)

	// on-file check runs only when the caller is signed in
	r.With(middleware.OptionalSession(repo.Session, log)).
		Get("/api/listings/{listingID}/document-requirements", listingHandler.DocumentRequirements)

	// ==================== HOST ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(log, entity.RoleHost))

		r.Post("/api/listings", listingHandler.CreateListing)
		r.Put("/api/listings/{listingID}/required-documents", listingHandler.SetRequiredDocuments)
	})
}
