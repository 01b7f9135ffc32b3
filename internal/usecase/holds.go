package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/payment"
	"foodtruck-market/pkg/metrics"

	"github.com/google/uuid"
)

// holds bounds every authorizer call with a timeout and records its latency
type holds struct {
	authorizer payment.Authorizer
	timeout    time.Duration
	metrics    *metrics.Metrics
}

func (h holds) authorize(ctx context.Context, req payment.HoldRequest) (*payment.Hold, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	hold, err := h.authorizer.Authorize(ctx, req)
	h.metrics.PaymentCall("authorize", resultLabel("held", err), time.Since(start))
	return hold, err
}

func (h holds) capture(ctx context.Context, b *entity.BookingRequest) (payment.Result, error) {
	return h.call(ctx, "capture", b, h.authorizer.Capture)
}

func (h holds) release(ctx context.Context, b *entity.BookingRequest) (payment.Result, error) {
	return h.call(ctx, "release", b, h.authorizer.Release)
}

func (h holds) call(ctx context.Context, op string, b *entity.BookingRequest,
	fn func(context.Context, uuid.UUID, string) (payment.Result, error)) (payment.Result, error) {
	if b.PaymentIntentID == nil || *b.PaymentIntentID == "" {
		return "", fmt.Errorf("%w: booking %s has no payment reference", ErrPaymentOperationFailed, b.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	res, err := fn(ctx, b.ID, *b.PaymentIntentID)
	h.metrics.PaymentCall(op, resultLabel(string(res), err), time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s timed out after %s", ErrPaymentOperationFailed, op, h.timeout)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrPaymentOperationFailed, op, err)
	}
	return res, nil
}

func resultLabel(ok string, err error) string {
	switch {
	case err == nil:
		return ok
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, payment.ErrAuthorizationDeclined):
		return "declined"
	default:
		return "error"
	}
}
