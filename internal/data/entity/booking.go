package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusDeclined  BookingStatus = "declined"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type HoldStatus string

const (
	HoldStatusHeld     HoldStatus = "held"
	HoldStatusCaptured HoldStatus = "captured"
	HoldStatusReleased HoldStatus = "released"
	HoldStatusExpired  HoldStatus = "expired"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusReleased PaymentStatus = "released"
)

type FulfillmentType string

const (
	FulfillmentPickup   FulfillmentType = "pickup"
	FulfillmentDelivery FulfillmentType = "delivery"
)

type BookingRequest struct {
	BaseNoDelete
	ListingID       uuid.UUID        `db:"listing_id"`
	RenterID        uuid.UUID        `db:"renter_id"`
	HostID          uuid.UUID        `db:"host_id"`
	StartDate       time.Time        `db:"start_date"`
	EndDate         time.Time        `db:"end_date"`
	TotalPrice      float64          `db:"total_price"`
	FulfillmentType *FulfillmentType `db:"fulfillment_type"`
	Status          BookingStatus    `db:"status"`
	HoldStatus      *HoldStatus      `db:"hold_status"`
	PaymentStatus   PaymentStatus    `db:"payment_status"`
	PaymentIntentID *string          `db:"payment_intent_id"`
	HoldExpiresAt   *time.Time       `db:"hold_expires_at"`
	IsInstantBook   bool             `db:"is_instant_book"`
	HostResponse    *string          `db:"host_response"`
	RespondedAt     *time.Time       `db:"responded_at"`
}

// IsHeld reports whether the booking is awaiting a host decision with an open hold
func (b *BookingRequest) IsHeld() bool {
	return b.Status == BookingStatusPending && b.HoldStatus != nil && *b.HoldStatus == HoldStatusHeld
}

// AcceptsDocuments reports whether documents may still be uploaded or reviewed
func (b *BookingRequest) AcceptsDocuments() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusApproved
}

// BookingTransition is the set of columns written by a conditional
// transition out of pending/held.
type BookingTransition struct {
	Status        BookingStatus
	HoldStatus    HoldStatus
	PaymentStatus PaymentStatus
	HostResponse  *string
	RespondedAt   *time.Time
	UpdatedAt     time.Time
}
