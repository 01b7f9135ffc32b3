package usecase

import (
	"context"
	"time"

	"foodtruck-market/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// claims marks a held row before its hold is captured or released so only
// one caller talks to the provider about it. The claim lapses after ttl in
// case the holder dies without releasing it.
type claims struct {
	bookings repository.BookingRepository
	ttl      time.Duration
	log      *zap.Logger
}

func newClaims(bookings repository.BookingRepository, paymentTimeout time.Duration, log *zap.Logger) claims {
	if paymentTimeout <= 0 {
		paymentTimeout = 10 * time.Second
	}
	return claims{bookings: bookings, ttl: 2*paymentTimeout + 30*time.Second, log: log}
}

// acquire reports false when the row is no longer held or somebody else holds
// a live claim. The returned func drops the claim; it is a no-op once a
// transition has cleared it.
func (c claims) acquire(ctx context.Context, id uuid.UUID, now time.Time) (func(), bool, error) {
	token := uuid.New()
	ok, err := c.bookings.Claim(ctx, id, token, now.Add(c.ttl), now)
	if err != nil || !ok {
		return func() {}, false, err
	}

	return func() {
		if err := c.bookings.ReleaseClaim(context.WithoutCancel(ctx), id, token); err != nil {
			c.log.Warn("Failed to release booking claim", zap.Error(err), zap.String("booking_id", id.String()))
		}
	}, true, nil
}
