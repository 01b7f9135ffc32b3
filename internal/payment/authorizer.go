// Package payment places, captures and releases delayed-capture holds.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAuthorizationDeclined means the payer's method refused the hold.
var ErrAuthorizationDeclined = errors.New("payment authorization declined")

// Result is the provider-side outcome of a capture or release.
type Result string

const (
	ResultCaptured        Result = "captured"
	ResultReleased        Result = "released"
	ResultAlreadyCaptured Result = "already_captured"
	ResultAlreadyReleased Result = "already_released"
)

type HoldRequest struct {
	BookingID       uuid.UUID
	ListingID       uuid.UUID
	RenterID        uuid.UUID
	Amount          float64
	PaymentMethodID string
}

type Hold struct {
	Reference string
	Status    string
}

// Authorizer is the payment provider seen by the booking workflow.
// Capture and Release never treat an already-resolved hold as an error;
// they report it through Result instead.
type Authorizer interface {
	Authorize(ctx context.Context, req HoldRequest) (*Hold, error)
	Capture(ctx context.Context, bookingID uuid.UUID, reference string) (Result, error)
	Release(ctx context.Context, bookingID uuid.UUID, reference string) (Result, error)
}
