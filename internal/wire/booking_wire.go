package wire

import (
	"care-booking/internal/adaptor"
	"care-booking/internal/data/repository"
	"care-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(authenticated(repo, config, log))

		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/", bookingHandler.GetUserBookings)
		r.Get("/{reference}", bookingHandler.GetByReference)
		r.Post("/{id}/cancel", bookingHandler.CancelBooking)
	})
}

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/payments", func(r chi.Router) {
		// server-to-server, authenticated by its HMAC signature
		r.Post("/webhook", paymentHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(authenticated(repo, config, log))

			r.Post("/session", paymentHandler.CreateSession)
			r.Post("/verify", paymentHandler.Verify)
			r.Post("/failure", paymentHandler.Failure)
			r.Post("/retry", paymentHandler.Retry)
		})
	})
}
