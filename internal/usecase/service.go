package usecase

import (
	"care-booking/internal/data/repository"
	"care-booking/pkg/metrics"
	"care-booking/pkg/utils"

	"go.uber.org/zap"
)

// Options carries the optional collaborators. A nil Gateway disables payment
// sessions, a nil Guard leaves replay detection to the version check.
type Options struct {
	Gateway PaymentGateway
	Guard   CallbackGuard
	Metrics *metrics.BookingMetrics
}

type Service struct {
	Auth         AuthService
	Patient      PatientService
	Catalog      CatalogService
	Booking      BookingService
	Payment      PaymentService
	Staff        StaffService
	Notification NotificationService
}

func NewService(repo *repository.Repository, config *utils.Config, opts Options, log *zap.Logger) *Service {
	notifier := NewNotificationService(repo, config, opts.Metrics, log)

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		Patient:      NewPatientService(repo.Patient, log),
		Catalog:      NewCatalogService(repo, log),
		Booking:      NewBookingService(repo, notifier, opts.Metrics, log),
		Payment:      NewPaymentService(repo, config, opts.Gateway, opts.Guard, notifier, opts.Metrics, log),
		Staff:        NewStaffService(repo, notifier, opts.Metrics, log),
		Notification: notifier,
	}
}
