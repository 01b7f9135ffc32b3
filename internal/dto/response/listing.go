package response

import (
	"time"

	"foodtruck-market/internal/data/entity"
)

type ListingResponse struct {
	ID                string                     `json:"id"`
	HostID            string                     `json:"host_id"`
	Title             string                     `json:"title"`
	Description       *string                    `json:"description,omitempty"`
	Category          entity.ListingCategory     `json:"category"`
	City              string                     `json:"city"`
	DailyRate         float64                    `json:"daily_rate"`
	WeeklyRate        *float64                   `json:"weekly_rate,omitempty"`
	InstantBook       bool                       `json:"instant_book"`
	IsActive          bool                       `json:"is_active"`
	RequiredDocuments []RequiredDocumentResponse `json:"required_documents,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
}

type RequiredDocumentResponse struct {
	DocumentType  string               `json:"document_type"`
	DeadlinePhase entity.DeadlinePhase `json:"deadline_phase"`
	Description   *string              `json:"description,omitempty"`
}

func ListingToResponse(l *entity.Listing, docs []*entity.RequiredDocument) ListingResponse {
	resp := ListingResponse{
		ID:          l.ID.String(),
		HostID:      l.HostID.String(),
		Title:       l.Title,
		Description: l.Description,
		Category:    l.Category,
		City:        l.City,
		DailyRate:   l.DailyRate,
		WeeklyRate:  l.WeeklyRate,
		InstantBook: l.InstantBook,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
	}
	if len(docs) > 0 {
		resp.RequiredDocuments = RequiredDocumentsToResponse(docs)
	}
	return resp
}

func RequiredDocumentsToResponse(docs []*entity.RequiredDocument) []RequiredDocumentResponse {
	out := make([]RequiredDocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = RequiredDocumentResponse{
			DocumentType:  d.DocumentType,
			DeadlinePhase: d.DeadlinePhase,
			Description:   d.Description,
		}
	}
	return out
}
