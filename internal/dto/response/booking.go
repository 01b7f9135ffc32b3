package response

import (
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/pkg/utils"
)

type BookingResponse struct {
	ID              string                  `json:"id"`
	ListingID       string                  `json:"listing_id"`
	RenterID        string                  `json:"renter_id"`
	HostID          string                  `json:"host_id"`
	StartDate       string                  `json:"start_date"`
	EndDate         string                  `json:"end_date"`
	TotalPrice      float64                 `json:"total_price"`
	FulfillmentType *entity.FulfillmentType `json:"fulfillment_type,omitempty"`
	Status          entity.BookingStatus    `json:"status"`
	HoldStatus      *entity.HoldStatus      `json:"hold_status"`
	PaymentStatus   entity.PaymentStatus    `json:"payment_status"`
	HoldExpiresAt   *time.Time              `json:"hold_expires_at,omitempty"`
	IsInstantBook   bool                    `json:"is_instant_book"`
	HostResponse    *string                 `json:"host_response,omitempty"`
	RespondedAt     *time.Time              `json:"responded_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// Helper converters
func BookingToResponse(b *entity.BookingRequest) BookingResponse {
	return BookingResponse{
		ID:              b.ID.String(),
		ListingID:       b.ListingID.String(),
		RenterID:        b.RenterID.String(),
		HostID:          b.HostID.String(),
		StartDate:       b.StartDate.Format(utils.DateLayout),
		EndDate:         b.EndDate.Format(utils.DateLayout),
		TotalPrice:      b.TotalPrice,
		FulfillmentType: b.FulfillmentType,
		Status:          b.Status,
		HoldStatus:      b.HoldStatus,
		PaymentStatus:   b.PaymentStatus,
		HoldExpiresAt:   b.HoldExpiresAt,
		IsInstantBook:   b.IsInstantBook,
		HostResponse:    b.HostResponse,
		RespondedAt:     b.RespondedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.BookingRequest) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookingToResponse(b)
	}
	return out
}
