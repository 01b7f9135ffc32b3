package wire

import (
	"foodtruck-market/internal/adaptor"
	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// ==================== RENTER ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(log, entity.RoleRenter))

			r.Post("/api/bookings", bookingHandler.SubmitBooking)
			r.Get("/api/user/bookings", bookingHandler.GetMyBookings) // ?page=1&per_page=10
			r.Post("/api/bookings/{bookingID}/cancel", bookingHandler.CancelBooking)
		})

		// ==================== HOST ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(log, entity.RoleHost))

			r.Post("/api/bookings/{bookingID}/respond", bookingHandler.RespondBooking)
			r.Get("/api/host/bookings", bookingHandler.GetHostBookings) // ?status=pending
		})

		// renter or host of the booking
		r.Get("/api/bookings/{bookingID}", bookingHandler.GetBooking)
	})
}
