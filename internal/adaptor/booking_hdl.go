package adaptor

import (
	"encoding/json"
	"net/http"

	"foodtruck-market/internal/dto/request"
	"foodtruck-market/internal/dto/response"
	"foodtruck-market/internal/usecase"
	"foodtruck-market/pkg/utils"

	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// SubmitBooking handles POST /api/bookings (renter)
func (h *BookingHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	renterID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req request.SubmitBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.Submit(r.Context(), renterID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "submit booking", nil)
		return
	}

	utils.ResponseCreated(w, "Booking requested", booking)
}

// RespondBooking handles POST /api/bookings/{bookingID}/respond (host)
func (h *BookingHandler) RespondBooking(w http.ResponseWriter, r *http.Request) {
	hostID, ok := requireUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(w, r, "bookingID")
	if !ok {
		return
	}

	var req request.RespondBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.Respond(r.Context(), hostID, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "respond to booking", bookingState(booking))
		return
	}

	utils.ResponseSuccess(w, resolvedMessage(string(booking.Status), req.Decision), booking)
}

// CancelBooking handles POST /api/bookings/{bookingID}/cancel (renter)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	renterID, ok := requireUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(w, r, "bookingID")
	if !ok {
		return
	}

	booking, err := h.service.Cancel(r.Context(), renterID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking", bookingState(booking))
		return
	}

	utils.ResponseSuccess(w, resolvedMessage(string(booking.Status), "cancelled"), booking)
}

// GetBooking handles GET /api/bookings/{bookingID}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(w, r, "bookingID")
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking", nil)
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetMyBookings handles GET /api/bookings (renter)
func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	renterID, ok := requireUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.ListRenterBookings(r.Context(), renterID, listBookingsQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list renter bookings", nil)
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetHostBookings handles GET /api/host/bookings (host)
func (h *BookingHandler) GetHostBookings(w http.ResponseWriter, r *http.Request) {
	hostID, ok := requireUser(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.ListHostBookings(r.Context(), hostID, listBookingsQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list host bookings", nil)
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

func listBookingsQuery(r *http.Request) *request.ListBookingsRequest {
	query := r.URL.Query()
	req := &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	return req
}

// resolvedMessage tells the caller when someone else's transition won
func resolvedMessage(status, wanted string) string {
	if status == wanted {
		return "success"
	}
	return "Booking was already resolved as " + status
}

// bookingState keeps a nil booking out of the conflict payload
func bookingState(b *response.BookingResponse) any {
	if b == nil {
		return nil
	}
	return b
}
