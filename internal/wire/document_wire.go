package wire

import (
	"foodtruck-market/internal/adaptor"
	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireDocument(
	r chi.Router,
	documentHandler *adaptor.DocumentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.With(middleware.RequireRole(log, entity.RoleRenter)).
			Post("/api/bookings/{bookingID}/documents", documentHandler.UploadDocument)
		r.Get("/api/bookings/{bookingID}/documents", documentHandler.GetBookingDocuments)

		// drafts sent before the renter requests the listing
		r.With(middleware.RequireRole(log, entity.RoleRenter)).
			Post("/api/listings/{listingID}/documents", documentHandler.UploadListingDocument)
		r.With(middleware.RequireRole(log, entity.RoleRenter)).
			Get("/api/listings/{listingID}/documents", documentHandler.GetListingDocuments)

		r.With(middleware.RequireRole(log, entity.RoleHost)).
			Post("/api/documents/{documentID}/review", documentHandler.ReviewDocument)
	})
}
