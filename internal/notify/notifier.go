// Package notify delivers booking events to renters and hosts.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeBookingRequested Type = "booking.requested"
	TypeBookingApproved  Type = "booking.approved"
	TypeBookingDeclined  Type = "booking.declined"
	TypeBookingCancelled Type = "booking.cancelled"
	TypeBookingExpired   Type = "booking.expired"
	TypeDocumentReviewed Type = "document.reviewed"
)

// Notification is the wire payload published for each event.
type Notification struct {
	ID          uuid.UUID         `json:"id"`
	Type        Type              `json:"type"`
	RecipientID uuid.UUID         `json:"recipient_id"`
	BookingID   uuid.UUID         `json:"booking_id"`
	ListingID   uuid.UUID         `json:"listing_id"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Data        map[string]string `json:"data,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
