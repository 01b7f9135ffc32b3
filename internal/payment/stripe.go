package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"foodtruck-market/pkg/utils"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// intentClient is the subset of the PaymentIntents API the adapter uses
type intentClient interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type StripeAuthorizer struct {
	intents  intentClient
	currency string
	log      *zap.Logger
}

func NewStripeAuthorizer(config utils.StripeConfig, log *zap.Logger) *StripeAuthorizer {
	sc := client.New(config.SecretKey, nil)
	return newStripeAuthorizer(sc.PaymentIntents, config.Currency, log)
}

func newStripeAuthorizer(intents intentClient, currency string, log *zap.Logger) *StripeAuthorizer {
	if currency == "" {
		currency = "usd"
	}
	return &StripeAuthorizer{
		intents:  intents,
		currency: currency,
		log:      log.With(zap.String("authorizer", "stripe")),
	}
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (a *StripeAuthorizer) Authorize(ctx context.Context, req HoldRequest) (*Hold, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(req.Amount)),
		Currency:      stripe.String(a.currency),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(utils.IdempotencyKey("hold", req.BookingID))
	params.AddMetadata("booking_id", req.BookingID.String())
	params.AddMetadata("listing_id", req.ListingID.String())
	params.AddMetadata("renter_id", req.RenterID.String())

	pi, err := a.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			a.log.Info("Hold declined",
				zap.String("booking_id", req.BookingID.String()),
				zap.String("decline_code", string(stripeErr.DeclineCode)),
			)
			return nil, fmt.Errorf("%w: %s", ErrAuthorizationDeclined, stripeErr.Msg)
		}
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusRequiresCapture {
		// 3DS or a failed confirmation leaves nothing to capture later
		a.log.Warn("Hold not capturable, cancelling intent",
			zap.String("booking_id", req.BookingID.String()),
			zap.String("payment_intent_id", pi.ID),
			zap.String("status", string(pi.Status)),
		)
		if _, cerr := a.Release(ctx, req.BookingID, pi.ID); cerr != nil {
			a.log.Error("Failed to cancel uncapturable intent", zap.Error(cerr), zap.String("payment_intent_id", pi.ID))
		}
		return nil, fmt.Errorf("%w: intent status %s", ErrAuthorizationDeclined, pi.Status)
	}

	return &Hold{Reference: pi.ID, Status: string(pi.Status)}, nil
}

func (a *StripeAuthorizer) Capture(ctx context.Context, bookingID uuid.UUID, reference string) (Result, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey(utils.IdempotencyKey("capture", bookingID))

	pi, err := a.intents.Capture(reference, params)
	if err == nil {
		if pi.Status == stripe.PaymentIntentStatusSucceeded {
			return ResultCaptured, nil
		}
		return "", fmt.Errorf("capture payment intent %s: unexpected status %s", reference, pi.Status)
	}

	if !isUnexpectedState(err) {
		return "", fmt.Errorf("capture payment intent %s: %w", reference, err)
	}
	return a.resolved(ctx, reference)
}

func (a *StripeAuthorizer) Release(ctx context.Context, bookingID uuid.UUID, reference string) (Result, error) {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(utils.IdempotencyKey("release", bookingID))

	pi, err := a.intents.Cancel(reference, params)
	if err == nil {
		if pi.Status == stripe.PaymentIntentStatusCanceled {
			return ResultReleased, nil
		}
		return "", fmt.Errorf("cancel payment intent %s: unexpected status %s", reference, pi.Status)
	}

	if !isUnexpectedState(err) {
		return "", fmt.Errorf("cancel payment intent %s: %w", reference, err)
	}
	return a.resolved(ctx, reference)
}

// resolved reads back an intent that refused a state change and maps its
// terminal status to an already-* result.
func (a *StripeAuthorizer) resolved(ctx context.Context, reference string) (Result, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := a.intents.Get(reference, params)
	if err != nil {
		return "", fmt.Errorf("get payment intent %s: %w", reference, err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return ResultAlreadyCaptured, nil
	case stripe.PaymentIntentStatusCanceled:
		return ResultAlreadyReleased, nil
	default:
		return "", fmt.Errorf("payment intent %s in unexpected state %s", reference, pi.Status)
	}
}

func isUnexpectedState(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState
}
