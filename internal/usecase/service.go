package usecase

import (
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/internal/notify"
	"foodtruck-market/internal/payment"
	"foodtruck-market/internal/storage"
	"foodtruck-market/pkg/metrics"
	"foodtruck-market/pkg/utils"

	"go.uber.org/zap"
)

// Notifier hands a notification off without waiting for delivery
type Notifier interface {
	Send(n notify.Notification)
}

type Service struct {
	Auth     AuthService
	User     UserService
	Listing  ListingService
	Booking  BookingService
	Document DocumentService
	Gate     *DocumentGate
	Sweeper  *Sweeper
}

func NewService(
	repo *repository.Repository,
	authorizer payment.Authorizer,
	uploader storage.Uploader,
	notifier Notifier,
	m *metrics.Metrics,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	gate := NewDocumentGate(repo, config.Booking.OnFileWindow, log)

	return &Service{
		Auth:     NewAuthService(repo, config, log),
		User:     NewUserService(repo.User, log),
		Listing:  NewListingService(repo, gate, log),
		Booking:  NewBookingService(repo, gate, authorizer, notifier, m, config.Booking, log),
		Document: NewDocumentService(repo, uploader, notifier, m, log),
		Gate:     gate,
		Sweeper:  NewSweeper(repo, authorizer, notifier, m, config, log),
	}
}
