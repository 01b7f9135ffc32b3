package usecase

import (
	"context"
	"fmt"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/internal/dto/request"
	"foodtruck-market/internal/dto/response"
	"foodtruck-market/internal/notify"
	"foodtruck-market/internal/payment"
	"foodtruck-market/pkg/metrics"
	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService drives the hold lifecycle of a booking request.
//
// Respond and Cancel return the current booking together with
// ErrInvalidState, ErrBookingBusy or ErrHoldUnavailable so callers can show
// what won.
type BookingService interface {
	Submit(ctx context.Context, renterID uuid.UUID, req *request.SubmitBookingRequest) (*response.BookingResponse, error)
	Respond(ctx context.Context, hostID, bookingID uuid.UUID, req *request.RespondBookingRequest) (*response.BookingResponse, error)
	Cancel(ctx context.Context, renterID, bookingID uuid.UUID) (*response.BookingResponse, error)

	GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error)
	ListRenterBookings(ctx context.Context, renterID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	ListHostBookings(ctx context.Context, hostID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo       *repository.Repository
	gate       *DocumentGate
	holds      holds
	claims     claims
	notifier   Notifier
	metrics    *metrics.Metrics
	holdWindow time.Duration
	now        func() time.Time
	log        *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	gate *DocumentGate,
	authorizer payment.Authorizer,
	notifier Notifier,
	m *metrics.Metrics,
	config utils.BookingConfig,
	log *zap.Logger,
) BookingService {
	return newBookingService(repo, gate, authorizer, notifier, m, config, log)
}

func newBookingService(
	repo *repository.Repository,
	gate *DocumentGate,
	authorizer payment.Authorizer,
	notifier Notifier,
	m *metrics.Metrics,
	config utils.BookingConfig,
	log *zap.Logger,
) *bookingService {
	log = log.With(zap.String("service", "booking"))
	return &bookingService{
		repo:       repo,
		gate:       gate,
		holds:      holds{authorizer: authorizer, timeout: config.PaymentTimeout, metrics: m},
		claims:     newClaims(repo.Booking, config.PaymentTimeout, log),
		notifier:   notifier,
		metrics:    m,
		holdWindow: config.HoldWindow,
		now:        time.Now,
		log:        log,
	}
}

func (s *bookingService) Submit(ctx context.Context, renterID uuid.UUID, req *request.SubmitBookingRequest) (*response.BookingResponse, error) {
	// 1. Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Submit booking validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	listingID, _ := uuid.Parse(req.ListingID)
	startDate, _ := utils.ParseDate(req.StartDate)
	endDate, _ := utils.ParseDate(req.EndDate)

	if endDate.Before(startDate) {
		return nil, fieldError("EndDate", "Must not be before the start date")
	}
	if startDate.Before(truncateDay(s.now())) {
		return nil, fieldError("StartDate", "Must not be in the past")
	}

	// 2. Listing must exist and be bookable
	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing == nil || !listing.IsActive {
		return nil, ErrListingNotFound
	}
	if listing.HostID == renterID {
		return nil, fmt.Errorf("%w: cannot book your own listing", ErrForbidden)
	}

	// 3. Documents due before the request
	eval, err := s.gate.Evaluate(ctx, listingID, &renterID, entity.PhaseBeforeBookingRequest)
	if err != nil {
		return nil, err
	}
	if eval.Blocking {
		s.metrics.Transition("submit", "documents_required")
		return nil, &DocumentsRequiredError{Phase: eval.Phase, Missing: eval.Missing}
	}

	// 4. Price and hold; nothing is stored unless the hold succeeds
	total := CalculateTotalPrice(listing, startDate, endDate)
	bookingID := uuid.New()

	hold, err := s.holds.authorize(ctx, payment.HoldRequest{
		BookingID:       bookingID,
		ListingID:       listingID,
		RenterID:        renterID,
		Amount:          total,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		s.metrics.Transition("submit", "authorization_failed")
		s.log.Warn("Hold authorization failed",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
			zap.String("renter_id", renterID.String()),
		)
		return nil, fmt.Errorf("%w: %w", ErrPaymentAuthorizationFailed, err)
	}

	// 5. Persist pending/held
	now := s.now()
	expiresAt := now.Add(s.holdWindow)
	held := entity.HoldStatusHeld
	booking := &entity.BookingRequest{
		BaseNoDelete:    entity.NewBaseNoDelete(bookingID, now),
		ListingID:       listingID,
		RenterID:        renterID,
		HostID:          listing.HostID,
		StartDate:       startDate,
		EndDate:         endDate,
		TotalPrice:      total,
		Status:          entity.BookingStatusPending,
		HoldStatus:      &held,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		PaymentIntentID: &hold.Reference,
		HoldExpiresAt:   &expiresAt,
		IsInstantBook:   listing.InstantBook,
	}
	if req.FulfillmentType != nil {
		ft := entity.FulfillmentType(*req.FulfillmentType)
		booking.FulfillmentType = &ft
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		// release the orphaned hold so the renter's funds are not tied up
		if _, rerr := s.holds.release(context.WithoutCancel(ctx), booking); rerr != nil {
			s.log.Error("Failed to release hold after insert failure",
				zap.Error(rerr),
				zap.String("booking_id", booking.ID.String()),
			)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.metrics.Transition("submit", "created")
	s.log.Info("Booking requested",
		zap.String("booking_id", booking.ID.String()),
		zap.String("listing_id", listingID.String()),
		zap.Float64("total_price", total),
		zap.Time("hold_expires_at", expiresAt),
	)

	s.adoptDrafts(ctx, booking)
	s.notify(notify.TypeBookingRequested, booking.HostID, booking, nil)

	// 6. Instant book approves immediately when approval documents are already on file
	if listing.InstantBook {
		return s.instantApprove(ctx, booking)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) instantApprove(ctx context.Context, booking *entity.BookingRequest) (*response.BookingResponse, error) {
	pending := response.BookingToResponse(booking)

	eval, err := s.gate.Evaluate(ctx, booking.ListingID, &booking.RenterID, entity.PhaseBeforeApproval)
	if err != nil {
		s.log.Warn("Instant book gate failed, leaving booking for host", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return &pending, nil
	}
	if eval.Blocking {
		s.log.Info("Instant book waiting on documents",
			zap.String("booking_id", booking.ID.String()),
			zap.Strings("missing", eval.Missing),
		)
		return &pending, nil
	}

	resp, err := s.approve(ctx, booking, nil)
	if err != nil {
		s.log.Warn("Instant approval failed, leaving booking for host", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return &pending, nil
	}
	return resp, nil
}

func (s *bookingService) Respond(ctx context.Context, hostID, bookingID uuid.UUID, req *request.RespondBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Respond validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.HostID != hostID {
		return nil, fmt.Errorf("%w: only the host can respond", ErrForbidden)
	}
	if !booking.IsHeld() {
		current := response.BookingToResponse(booking)
		return &current, fmt.Errorf("%w: booking is %s", ErrInvalidState, booking.Status)
	}

	if req.Decision == string(entity.BookingStatusDeclined) {
		return s.decline(ctx, booking, req.Response)
	}

	eval, err := s.gate.Evaluate(ctx, booking.ListingID, &booking.RenterID, entity.PhaseBeforeApproval)
	if err != nil {
		return nil, err
	}
	if eval.Blocking {
		s.metrics.Transition("approve", "documents_required")
		return nil, &DocumentsRequiredError{Phase: eval.Phase, Missing: eval.Missing}
	}

	return s.approve(ctx, booking, req.Response)
}

// approve captures first and only then writes approved/captured/paid
func (s *bookingService) approve(ctx context.Context, booking *entity.BookingRequest, hostResponse *string) (*response.BookingResponse, error) {
	release, resp, err := s.claim(ctx, "approve", booking)
	if release == nil {
		return resp, err
	}
	defer release()

	res, err := s.holds.capture(ctx, booking)
	if err != nil {
		s.metrics.Transition("approve", "payment_failed")
		s.log.Error("Capture failed", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, err
	}

	switch res {
	case payment.ResultCaptured, payment.ResultAlreadyCaptured:
	case payment.ResultAlreadyReleased:
		return s.holdUnavailable(ctx, "approve", booking, "hold was released before capture")
	default:
		return nil, fmt.Errorf("%w: unexpected capture result %q", ErrPaymentOperationFailed, res)
	}

	now := s.now()
	return s.transition(ctx, "approve", booking, entity.BookingTransition{
		Status:        entity.BookingStatusApproved,
		HoldStatus:    entity.HoldStatusCaptured,
		PaymentStatus: entity.PaymentStatusPaid,
		HostResponse:  hostResponse,
		RespondedAt:   &now,
		UpdatedAt:     now,
	}, notify.TypeBookingApproved, booking.RenterID)
}

func (s *bookingService) decline(ctx context.Context, booking *entity.BookingRequest, hostResponse *string) (*response.BookingResponse, error) {
	release, resp, err := s.claim(ctx, "decline", booking)
	if release == nil {
		return resp, err
	}
	defer release()

	res, err := s.holds.release(ctx, booking)
	if err != nil {
		s.metrics.Transition("decline", "payment_failed")
		s.log.Error("Release failed", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, err
	}

	if res == payment.ResultAlreadyCaptured {
		return s.holdUnavailable(ctx, "decline", booking, "hold was already captured")
	}

	now := s.now()
	return s.transition(ctx, "decline", booking, entity.BookingTransition{
		Status:        entity.BookingStatusDeclined,
		HoldStatus:    entity.HoldStatusReleased,
		PaymentStatus: entity.PaymentStatusReleased,
		HostResponse:  hostResponse,
		RespondedAt:   &now,
		UpdatedAt:     now,
	}, notify.TypeBookingDeclined, booking.RenterID)
}

func (s *bookingService) Cancel(ctx context.Context, renterID, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, fmt.Errorf("%w: only the renter can cancel", ErrForbidden)
	}
	if !booking.IsHeld() {
		current := response.BookingToResponse(booking)
		return &current, fmt.Errorf("%w: booking is %s", ErrInvalidState, booking.Status)
	}

	release, resp, err := s.claim(ctx, "cancel", booking)
	if release == nil {
		return resp, err
	}
	defer release()

	res, err := s.holds.release(ctx, booking)
	if err != nil {
		s.metrics.Transition("cancel", "payment_failed")
		s.log.Error("Release failed", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, err
	}
	if res == payment.ResultAlreadyCaptured {
		return s.holdUnavailable(ctx, "cancel", booking, "hold was already captured")
	}

	now := s.now()
	return s.transition(ctx, "cancel", booking, entity.BookingTransition{
		Status:        entity.BookingStatusCancelled,
		HoldStatus:    entity.HoldStatusReleased,
		PaymentStatus: entity.PaymentStatusReleased,
		UpdatedAt:     now,
	}, notify.TypeBookingCancelled, booking.HostID)
}

// transition writes t only if the booking is still pending/held. Losing the
// race is not an error: the winner's row is returned instead.
func (s *bookingService) transition(
	ctx context.Context,
	name string,
	booking *entity.BookingRequest,
	t entity.BookingTransition,
	event notify.Type,
	recipient uuid.UUID,
) (*response.BookingResponse, error) {
	applied, err := s.repo.Booking.TransitionFromHeld(ctx, booking.ID, t)
	if err != nil {
		return nil, fmt.Errorf("%s booking %s: %w", name, booking.ID, err)
	}

	if !applied {
		s.metrics.Transition(name, "already_resolved")
		current, err := s.findBooking(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		s.log.Info("Booking already resolved",
			zap.String("booking_id", booking.ID.String()),
			zap.String("transition", name),
			zap.String("status", string(current.Status)),
		)
		resp := response.BookingToResponse(current)
		return &resp, nil
	}

	applyTransition(booking, t)
	s.metrics.Transition(name, "applied")
	s.log.Info("Booking transitioned",
		zap.String("booking_id", booking.ID.String()),
		zap.String("transition", name),
		zap.String("status", string(booking.Status)),
	)

	s.notify(event, recipient, booking, nil)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != userID && booking.HostID != userID {
		return nil, ErrForbidden
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListRenterBookings(ctx context.Context, renterID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	bookings, err := s.repo.Booking.FindByRenterID(ctx, renterID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list renter bookings: %w", err)
	}
	total, err := s.repo.Booking.CountByRenterID(ctx, renterID)
	if err != nil {
		return nil, fmt.Errorf("count renter bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) ListHostBookings(ctx context.Context, hostID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	var status *entity.BookingStatus
	if req.Status != nil {
		st := entity.BookingStatus(*req.Status)
		status = &st
	}

	bookings, err := s.repo.Booking.FindByHostID(ctx, hostID, status, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list host bookings: %w", err)
	}
	total, err := s.repo.Booking.CountByHostID(ctx, hostID, status)
	if err != nil {
		return nil, fmt.Errorf("count host bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.PerPage, total), nil
}

// ==================== HELPER METHODS ====================

func (s *bookingService) findBooking(ctx context.Context, id uuid.UUID) (*entity.BookingRequest, error) {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// claim takes the row for one capture or release. A nil release func means the
// row was not claimed and the returned booking and error go back to the caller.
func (s *bookingService) claim(ctx context.Context, name string, booking *entity.BookingRequest) (func(), *response.BookingResponse, error) {
	release, ok, err := s.claims.acquire(ctx, booking.ID, s.now())
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return release, nil, nil
	}

	current, err := s.findBooking(ctx, booking.ID)
	if err != nil {
		return nil, nil, err
	}
	resp := response.BookingToResponse(current)
	if current.IsHeld() {
		s.metrics.Transition(name, "busy")
		return nil, &resp, fmt.Errorf("%w: %s", ErrBookingBusy, booking.ID)
	}
	s.metrics.Transition(name, "already_resolved")
	return nil, &resp, fmt.Errorf("%w: booking is %s", ErrInvalidState, current.Status)
}

// holdUnavailable re-reads the row after the provider reported the hold as
// already resolved. A row that reached a terminal state meanwhile is the
// answer, not an error.
func (s *bookingService) holdUnavailable(ctx context.Context, name string, booking *entity.BookingRequest, reason string) (*response.BookingResponse, error) {
	current, err := s.findBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(current)
	if !current.IsHeld() {
		s.metrics.Transition(name, "already_resolved")
		return &resp, nil
	}

	s.metrics.Transition(name, "hold_unavailable")
	s.log.Warn("Hold resolved at provider but booking still held",
		zap.String("booking_id", booking.ID.String()),
		zap.String("transition", name),
	)
	return &resp, fmt.Errorf("%w: %s", ErrHoldUnavailable, reason)
}

// adoptDrafts attaches documents the renter sent before requesting. The
// booking stands even if this fails; the drafts stay listed under the listing.
func (s *bookingService) adoptDrafts(ctx context.Context, booking *entity.BookingRequest) {
	adopted, err := s.repo.BookingDocument.AdoptDrafts(ctx, booking.ListingID, booking.RenterID, booking.ID, booking.CreatedAt)
	if err != nil {
		s.log.Error("Failed to adopt draft documents", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return
	}
	if adopted > 0 {
		s.log.Info("Draft documents adopted",
			zap.String("booking_id", booking.ID.String()),
			zap.Int64("count", adopted),
		)
	}
}

func (s *bookingService) notify(t notify.Type, recipient uuid.UUID, booking *entity.BookingRequest, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if data == nil {
		data = map[string]string{"status": string(booking.Status)}
	}
	s.notifier.Send(notify.Notification{
		Type:        t,
		RecipientID: recipient,
		BookingID:   booking.ID,
		ListingID:   booking.ListingID,
		Data:        data,
	})
}

func applyTransition(b *entity.BookingRequest, t entity.BookingTransition) {
	hold := t.HoldStatus
	b.Status = t.Status
	b.HoldStatus = &hold
	b.PaymentStatus = t.PaymentStatus
	if t.HostResponse != nil {
		b.HostResponse = t.HostResponse
	}
	if t.RespondedAt != nil {
		b.RespondedAt = t.RespondedAt
	}
	b.UpdatedAt = t.UpdatedAt
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
