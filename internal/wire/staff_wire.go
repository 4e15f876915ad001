package wire

import (
	"care-booking/internal/adaptor"
	"care-booking/internal/data/repository"
	"care-booking/pkg/middleware"
	"care-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireStaff(
	r chi.Router,
	staffHandler *adaptor.StaffHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== STAFF ROUTES ====================
	r.Route("/api/staff", func(r chi.Router) {
		r.Use(authenticated(repo, config, log))
		r.Use(middleware.RequireStaff(log))

		r.Get("/stats", staffHandler.GetStats)
		r.Get("/bookings/pending", staffHandler.GetPendingBookings)

		r.Route("/bookings/{id}", func(r chi.Router) {
			r.Post("/approve", staffHandler.Approve)
			r.Post("/reject", staffHandler.Reject)
			r.Post("/reschedule", staffHandler.Reschedule)
			r.Post("/complete", staffHandler.Complete)
			r.Post("/cancel", staffHandler.Cancel)
		})
	})
}

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authenticated(repo, config, log))
		r.Use(middleware.RequireAdmin(log))

		r.Post("/tests", adminHandler.UpsertTest)
		r.Post("/doctors", adminHandler.CreateDoctor)
		r.Get("/outbox/dead", adminHandler.DeadLetters)
	})
}
