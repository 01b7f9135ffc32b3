package adaptor

import (
	"errors"
	"net/http"

	"foodtruck-market/internal/usecase"
	"foodtruck-market/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Listing  *ListingHandler
	Booking  *BookingHandler
	Document *DocumentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		User:     NewUserHandler(service.User, log),
		Listing:  NewListingHandler(service.Listing, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Document: NewDocumentHandler(service.Document, log),
	}
}

// errorBody is the machine-readable part of a failed workflow response
type errorBody struct {
	Error   string   `json:"error"`
	Phase   string   `json:"phase,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// handleServiceError maps usecase errors to HTTP responses. current, when
// non-nil, is the resource state returned alongside a conflict.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string, current any) {
	var (
		validation *usecase.ValidationError
		documents  *usecase.DocumentsRequiredError
	)

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validation.Fields)

	case errors.As(err, &documents):
		log.Info(operation+" blocked on documents", zap.Strings("missing", documents.Missing))
		utils.ResponseConflict(w, "Documents required", nil, errorBody{
			Error:   "DocumentsRequired",
			Phase:   string(documents.Phase),
			Missing: documents.Missing,
		})

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, usecase.ErrListingNotFound),
		errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrDocumentNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidState):
		log.Info(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseConflict(w, "Booking was already resolved", current, errorBody{Error: "InvalidState"})

	case errors.Is(err, usecase.ErrBookingBusy):
		log.Info(operation+" failed - booking busy", zap.Error(err))
		utils.ResponseConflict(w, "Booking is being resolved, retry shortly", current, errorBody{Error: "BookingBusy"})

	case errors.Is(err, usecase.ErrHoldUnavailable):
		log.Warn(operation+" failed - hold unavailable", zap.Error(err))
		utils.ResponseConflict(w, "Payment hold was already resolved", current, errorBody{Error: "HoldUnavailable"})

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil, nil)

	case errors.Is(err, usecase.ErrPaymentAuthorizationFailed):
		log.Warn(operation+" failed - payment authorization", zap.Error(err))
		utils.ResponsePaymentRequired(w, "Payment could not be authorized", errorBody{Error: "PaymentAuthorizationFailed"})

	case errors.Is(err, usecase.ErrPaymentOperationFailed):
		log.Error(operation+" failed - payment provider", zap.Error(err))
		utils.ResponseBadGateway(w, "Payment could not be completed, try again", errorBody{Error: "PaymentOperationFailed"})

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, name))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}
