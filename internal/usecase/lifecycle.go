package usecase

import (
	"context"
	"errors"
	"fmt"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/pkg/metrics"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("care-booking/internal/usecase")

// lifecycle holds the booking operations shared by the patient, payment and
// staff services: loading, ownership checks and version-checked transitions.
type lifecycle struct {
	repo     *repository.Repository
	notifier NotificationService
	metrics  *metrics.BookingMetrics
	log      *zap.Logger
}

func newLifecycle(repo *repository.Repository, notifier NotificationService, m *metrics.BookingMetrics, log *zap.Logger) *lifecycle {
	return &lifecycle{repo: repo, notifier: notifier, metrics: m, log: log}
}

func (l *lifecycle) load(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := l.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", id, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return booking, nil
}

func (l *lifecycle) loadString(ctx context.Context, id string) (*entity.Booking, error) {
	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: booking_id: Must be a valid UUID", ErrValidation)
	}
	return l.load(ctx, bookingID)
}

// authorize lets staff see every booking and patients only their own.
// Foreign bookings look missing rather than forbidden.
func (l *lifecycle) authorize(ctx context.Context, sess *utils.Session, booking *entity.Booking) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if sess.IsStaff() {
		return nil
	}
	patient, err := l.repo.Patient.FindByUserID(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("load patient for user %s: %w", sess.UserID, err)
	}
	if patient == nil || booking.PatientID == nil || *booking.PatientID != patient.ID {
		return fmt.Errorf("%w: booking %s", ErrNotFound, booking.ReferenceNumber)
	}
	return nil
}

// transition moves booking to status after checking the state table, writing
// fields in the same version-checked update.
func (l *lifecycle) transition(ctx context.Context, booking *entity.Booking, to entity.BookingStatus, fields repository.StatusFields) (*entity.Booking, error) {
	from := booking.Status

	ctx, span := tracer.Start(ctx, "booking.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("care.booking_id", booking.ID.String()),
		attribute.String("care.from", string(from)),
		attribute.String("care.to", string(to)),
	)

	if !entity.CanTransition(from, to) {
		l.metrics.ObserveTransition(string(from), string(to), "invalid")
		return nil, transitionError(from, to)
	}

	updated, err := l.write(ctx, booking, to, fields)
	if err != nil {
		return nil, err
	}

	l.metrics.ObserveTransition(string(from), string(to), "ok")
	l.log.Info("Booking transitioned",
		zap.String("reference", updated.ReferenceNumber),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("version", updated.Version),
	)
	return updated, nil
}

// write performs the version-checked update without consulting the state
// table. It is used directly only for field updates that keep the status.
func (l *lifecycle) write(ctx context.Context, booking *entity.Booking, status entity.BookingStatus, fields repository.StatusFields) (*entity.Booking, error) {
	updated, err := l.repo.Booking.UpdateStatus(ctx, booking.ID, booking.Version, status, fields)
	if errors.Is(err, repository.ErrVersionConflict) {
		l.metrics.ObserveTransition(string(booking.Status), string(status), "conflict")
		return nil, fmt.Errorf("booking %s: %w", booking.ReferenceNumber, ErrVersionConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("update booking %s: %w", booking.ReferenceNumber, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, booking.ID)
	}
	return updated, nil
}

// notify never fails the caller; the outcome is logged and counted by the
// notification service.
func (l *lifecycle) notify(ctx context.Context, event NotificationEvent, booking *entity.Booking, extra map[string]string) {
	if l.notifier == nil {
		return
	}
	if !l.notifier.Notify(ctx, event, booking, extra) {
		l.log.Warn("Notification not enqueued",
			zap.String("event", string(event)),
			zap.String("reference", booking.ReferenceNumber),
		)
	}
}
