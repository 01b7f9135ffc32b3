package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/internal/notify"
	"foodtruck-market/internal/payment"
	"foodtruck-market/pkg/metrics"
	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SweepResult summarizes one sweeper run.
//
// Processed rows were expired, Reconciled rows turned out to be captured
// already, Skipped rows were resolved or claimed by someone else first.
type SweepResult struct {
	Scanned    int
	Processed  int
	Reconciled int
	Skipped    int
	Errors     []SweepError
}

type SweepError struct {
	BookingID uuid.UUID
	Err       error
}

func (e SweepError) Error() string {
	return fmt.Sprintf("booking %s: %v", e.BookingID, e.Err)
}

type sweepOutcome int

const (
	outcomeProcessed sweepOutcome = iota
	outcomeReconciled
	outcomeSkipped
)

// Sweeper releases holds whose host never answered. Every booking is handled
// on its own; one failing or hanging booking does not stop the others.
type Sweeper struct {
	bookings       repository.BookingRepository
	holds          holds
	claims         claims
	notifier       Notifier
	metrics        *metrics.Metrics
	batchSize      int
	concurrency    int
	bookingTimeout time.Duration
	now            func() time.Time
	log            *zap.Logger
}

func NewSweeper(
	repo *repository.Repository,
	authorizer payment.Authorizer,
	notifier Notifier,
	m *metrics.Metrics,
	config *utils.Config,
	log *zap.Logger,
) *Sweeper {
	batch := config.Sweeper.BatchSize
	if batch <= 0 {
		batch = 200
	}
	workers := config.Sweeper.Concurrency
	if workers <= 0 {
		workers = 1
	}
	log = log.With(zap.String("service", "sweeper"))
	return &Sweeper{
		bookings:       repo.Booking,
		holds:          holds{authorizer: authorizer, timeout: config.Booking.PaymentTimeout, metrics: m},
		claims:         newClaims(repo.Booking, config.Booking.PaymentTimeout, log),
		notifier:       notifier,
		metrics:        m,
		batchSize:      batch,
		concurrency:    workers,
		bookingTimeout: config.Sweeper.BookingTimeout,
		now:            time.Now,
		log:            log,
	}
}

// Sweep only returns an error when the expired holds cannot be listed;
// per-booking failures are collected in the result.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	expired, err := s.bookings.FindExpiredHolds(ctx, now, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("find expired holds: %w", err)
	}

	result := &SweepResult{Scanned: len(expired)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, booking := range expired {
		g.Go(func() error {
			outcome, err := s.sweepOne(ctx, booking)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, SweepError{BookingID: booking.ID, Err: err})
				return nil
			}
			switch outcome {
			case outcomeProcessed:
				result.Processed++
			case outcomeReconciled:
				result.Reconciled++
			case outcomeSkipped:
				result.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.SweepRun()
	s.metrics.SweepOutcome("processed", result.Processed)
	s.metrics.SweepOutcome("reconciled", result.Reconciled)
	s.metrics.SweepOutcome("skipped", result.Skipped)
	s.metrics.SweepOutcome("error", len(result.Errors))

	for _, e := range result.Errors {
		s.log.Error("Failed to expire booking", zap.String("booking_id", e.BookingID.String()), zap.Error(e.Err))
	}
	s.log.Info("Sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("processed", result.Processed),
		zap.Int("reconciled", result.Reconciled),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

func (s *Sweeper) sweepOne(ctx context.Context, booking *entity.BookingRequest) (outcome sweepOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if s.bookingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.bookingTimeout)
		defer cancel()
	}

	release, claimed, err := s.claims.acquire(ctx, booking.ID, s.now())
	if err != nil {
		return 0, err
	}
	if !claimed {
		return outcomeSkipped, nil
	}
	defer release()

	res, err := s.holds.release(ctx, booking)
	if err != nil {
		return 0, err
	}

	now := s.now()
	t := entity.BookingTransition{
		Status:        entity.BookingStatusCancelled,
		HoldStatus:    entity.HoldStatusExpired,
		PaymentStatus: entity.PaymentStatusReleased,
		UpdatedAt:     now,
	}
	outcome = outcomeProcessed

	// captured elsewhere (approve whose local write never landed): record what the provider did
	if res == payment.ResultAlreadyCaptured {
		t = entity.BookingTransition{
			Status:        entity.BookingStatusApproved,
			HoldStatus:    entity.HoldStatusCaptured,
			PaymentStatus: entity.PaymentStatusPaid,
			UpdatedAt:     now,
		}
		outcome = outcomeReconciled
	}

	applied, err := s.bookings.TransitionFromHeld(ctx, booking.ID, t)
	if err != nil {
		return 0, err
	}
	if !applied {
		return outcomeSkipped, nil
	}

	if outcome == outcomeReconciled {
		s.log.Warn("Expired hold was already captured, booking reconciled to approved",
			zap.String("booking_id", booking.ID.String()))
		s.send(notify.TypeBookingApproved, booking.RenterID, booking, t.Status)
		return outcome, nil
	}

	s.send(notify.TypeBookingExpired, booking.RenterID, booking, t.Status)
	s.send(notify.TypeBookingExpired, booking.HostID, booking, t.Status)
	return outcome, nil
}

func (s *Sweeper) send(t notify.Type, recipient uuid.UUID, booking *entity.BookingRequest, status entity.BookingStatus) {
	if s.notifier == nil {
		return
	}
	s.notifier.Send(notify.Notification{
		Type:        t,
		RecipientID: recipient,
		BookingID:   booking.ID,
		ListingID:   booking.ListingID,
		Data:        map[string]string{"status": string(status)},
	})
}
