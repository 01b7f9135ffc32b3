package wire

import (
	"foodtruck-market/internal/adaptor"
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Get("/api/me", userHandler.Profile)
		r.Get("/api/user/profile", userHandler.Profile)
	})
}
