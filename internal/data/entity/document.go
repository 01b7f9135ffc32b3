package entity

import (
	"time"

	"github.com/google/uuid"
)

// DeadlinePhase is the workflow step a required document must be approved before
type DeadlinePhase string

const (
	PhaseBeforeBookingRequest DeadlinePhase = "before_booking_request"
	PhaseBeforeApproval       DeadlinePhase = "before_approval"
	PhaseAfterApproval        DeadlinePhase = "after_approval"
)

type RequiredDocument struct {
	BaseSimple
	ListingID     uuid.UUID     `db:"listing_id"`
	DocumentType  string        `db:"document_type"`
	DeadlinePhase DeadlinePhase `db:"deadline_phase"`
	Description   *string       `db:"description"`
}

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// BookingDocument is a renter upload. Documents sent before the booking
// request exists have no BookingID and are adopted by the next request the
// renter submits for the listing.
type BookingDocument struct {
	BaseNoDelete
	ListingID       uuid.UUID      `db:"listing_id"`
	BookingID       *uuid.UUID     `db:"booking_id"`
	RenterID        uuid.UUID      `db:"renter_id"`
	DocumentType    string         `db:"document_type"`
	FileURL         string         `db:"file_url"`
	Status          DocumentStatus `db:"status"`
	ReviewedAt      *time.Time     `db:"reviewed_at"`
	ReviewerID      *uuid.UUID     `db:"reviewer_id"`
	RejectionReason *string        `db:"rejection_reason"`
}

// IsDraft reports whether the document still waits for a booking request
func (d *BookingDocument) IsDraft() bool {
	return d.BookingID == nil
}
