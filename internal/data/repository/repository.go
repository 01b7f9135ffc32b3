package repository

import (
	"foodtruck-market/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User             UserRepository
	Session          SessionRepository
	Listing          ListingRepository
	RequiredDocument RequiredDocumentRepository
	Booking          BookingRepository
	BookingDocument  BookingDocumentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:             NewUserRepository(db, log),
		Session:          NewSessionRepository(db, log),
		Listing:          NewListingRepository(db, log),
		RequiredDocument: NewRequiredDocumentRepository(db, log),
		Booking:          NewBookingRepository(db, log),
		BookingDocument:  NewBookingDocumentRepository(db, log),
	}
}
