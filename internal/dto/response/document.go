package response

import (
	"time"

	"foodtruck-market/internal/data/entity"
)

type BookingDocumentResponse struct {
	ID              string                `json:"id"`
	ListingID       string                `json:"listing_id"`
	BookingID       *string               `json:"booking_id"`
	DocumentType    string                `json:"document_type"`
	FileURL         string                `json:"file_url"`
	Status          entity.DocumentStatus `json:"status"`
	ReviewedAt      *time.Time            `json:"reviewed_at,omitempty"`
	RejectionReason *string               `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func BookingDocumentToResponse(d *entity.BookingDocument) BookingDocumentResponse {
	var bookingID *string
	if d.BookingID != nil {
		id := d.BookingID.String()
		bookingID = &id
	}

	return BookingDocumentResponse{
		ID:              d.ID.String(),
		ListingID:       d.ListingID.String(),
		BookingID:       bookingID,
		DocumentType:    d.DocumentType,
		FileURL:         d.FileURL,
		Status:          d.Status,
		ReviewedAt:      d.ReviewedAt,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// GateResponse is the document gate outcome for one phase
type GateResponse struct {
	Phase         entity.DeadlinePhase `json:"phase"`
	RequiredTypes []string             `json:"required_types"`
	OnFile        []string             `json:"on_file"`
	Uploaded      []string             `json:"uploaded"`
	Missing       []string             `json:"missing"`
	Blocking      bool                 `json:"blocking"`
	Evaluable     bool                 `json:"evaluable"`
}

type DocumentRequirementsResponse struct {
	ListingID    string                     `json:"listing_id"`
	Requirements []RequiredDocumentResponse `json:"requirements"`
	Phases       []GateResponse             `json:"phases"`
}
