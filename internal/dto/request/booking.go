package request

type SubmitBookingRequest struct {
	ListingID       string  `json:"listing_id" validate:"required,uuid"`
	StartDate       string  `json:"start_date" validate:"required,date"`
	EndDate         string  `json:"end_date" validate:"required,date"`
	FulfillmentType *string `json:"fulfillment_type,omitempty" validate:"omitempty,oneof=pickup delivery"`
	PaymentMethodID string  `json:"payment_method_id" validate:"required,max=255"`
}

type RespondBookingRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approved declined"`
	Response *string `json:"response,omitempty" validate:"omitempty,max=1000"`
}

type ListBookingsRequest struct {
	PaginatedRequest
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=pending approved declined cancelled"`
}
