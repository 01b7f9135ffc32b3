package request

type RequiredDocumentRequest struct {
	DocumentType  string  `json:"document_type" validate:"required,max=60"`
	DeadlinePhase string  `json:"deadline_phase" validate:"required,oneof=before_booking_request before_approval after_approval"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type CreateListingRequest struct {
	Title             string                    `json:"title" validate:"required,min=3,max=200"`
	Description       *string                   `json:"description,omitempty"`
	Category          string                    `json:"category" validate:"required,oneof=food_truck trailer ghost_kitchen vendor_lot"`
	City              string                    `json:"city" validate:"required,max=100"`
	DailyRate         float64                   `json:"daily_rate" validate:"required,gt=0"`
	WeeklyRate        *float64                  `json:"weekly_rate,omitempty" validate:"omitempty,gt=0"`
	InstantBook       bool                      `json:"instant_book"`
	RequiredDocuments []RequiredDocumentRequest `json:"required_documents,omitempty" validate:"omitempty,dive"`
}

type SetRequiredDocumentsRequest struct {
	Documents []RequiredDocumentRequest `json:"documents" validate:"dive"`
}

type ListListingsRequest struct {
	PaginatedRequest
	Category *string `json:"category,omitempty" validate:"omitempty,oneof=food_truck trailer ghost_kitchen vendor_lot"`
}
