package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"
	"care-booking/pkg/metrics"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	referencePrefix   = "BK"
	referenceAttempts = 3
)

type BookingService interface {
	Create(ctx context.Context, sess *utils.Session, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetByReference(ctx context.Context, sess *utils.Session, reference string) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, sess *utils.Session, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	Cancel(ctx context.Context, sess *utils.Session, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	*lifecycle
	newReference func() string
}

func NewBookingService(
	repo *repository.Repository,
	notifier NotificationService,
	m *metrics.BookingMetrics,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		lifecycle:    newLifecycle(repo, notifier, m, log.With(zap.String("service", "booking"))),
		newReference: func() string { return utils.GenerateReference(referencePrefix) },
	}
}

func (s *bookingService) Create(ctx context.Context, sess *utils.Session, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	appointmentDate, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: appointment_date: Must match the layout 2006-01-02", ErrValidation)
	}

	booking := &entity.Booking{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New()},
		BookingType:     entity.BookingType(req.BookingType),
		PatientName:     strings.TrimSpace(req.PatientName),
		PatientMobile:   req.PatientMobile,
		PatientEmail:    strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		PatientAddress:  req.PatientAddress,
		ItemName:        req.ItemName,
		AppointmentDate: appointmentDate,
		AppointmentTime: req.AppointmentTime,
		TotalAmount:     req.TotalAmount,
		PaymentStatus:   entity.PaymentStatusPending,
		Status:          entity.BookingStatusPaymentPending,
		Notes:           req.Notes,
	}

	patient, err := s.repo.Patient.FindByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load patient for user %s: %w", sess.UserID, err)
	}
	if patient != nil {
		booking.PatientID = &patient.ID
	}

	if req.ItemID != "" {
		itemID, err := uuid.Parse(req.ItemID)
		if err != nil {
			return nil, fmt.Errorf("%w: item_id: Must be a valid UUID", ErrValidation)
		}
		booking.ItemID = &itemID
	}

	// consultation fees come from the doctor record, not the client
	if booking.BookingType == entity.BookingTypeDoctor && booking.ItemID != nil {
		doctor, err := s.repo.Doctor.FindByID(ctx, *booking.ItemID)
		if err != nil {
			return nil, fmt.Errorf("load doctor %s: %w", booking.ItemID, err)
		}
		if doctor == nil || !doctor.IsAvailable {
			return nil, fmt.Errorf("%w: doctor %s is not available", ErrInvalidBooking, booking.ItemID)
		}
		booking.ItemName = doctor.FullName
		booking.TotalAmount = doctor.ConsultationFee
	}

	// test bookings are priced at the catalog MRP
	if booking.BookingType == entity.BookingTypeTest {
		if booking.ItemID == nil {
			return nil, fmt.Errorf("%w: test bookings must reference a catalog test", ErrInvalidBooking)
		}
		test, err := s.repo.Test.FindByID(ctx, *booking.ItemID)
		if err != nil {
			return nil, fmt.Errorf("load test %s: %w", booking.ItemID, err)
		}
		if test == nil || !test.IsActive {
			return nil, fmt.Errorf("%w: test %s is not offered", ErrInvalidBooking, booking.ItemID)
		}
		booking.ItemName = test.Name
		booking.TotalAmount = test.MRP
	}

	if err := s.insertWithReference(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("reference", booking.ReferenceNumber),
		zap.String("booking_type", string(booking.BookingType)),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	s.notify(ctx, EventCreated, booking, nil)

	resp := bookingResponse(booking)
	return &resp, nil
}

// insertWithReference assigns a fresh reference and inserts, generating a new
// one when the unique index reports a collision.
func (s *bookingService) insertWithReference(ctx context.Context, booking *entity.Booking) error {
	var err error
	for attempt := 1; attempt <= referenceAttempts; attempt++ {
		booking.ReferenceNumber = s.newReference()
		err = s.repo.Booking.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("create booking: %w", err)
		}
		s.log.Warn("Reference number collision",
			zap.String("reference", booking.ReferenceNumber),
			zap.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("create booking after %d reference attempts: %w", referenceAttempts, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *bookingService) GetByReference(ctx context.Context, sess *utils.Session, reference string) (*response.BookingResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByReference(ctx, strings.TrimSpace(reference))
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", reference, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, reference)
	}
	if err := s.authorize(ctx, sess, booking); err != nil {
		return nil, err
	}

	resp := bookingResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, sess *utils.Session, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	limit, offset := req.Limit(), req.Offset()
	bookings, err := s.repo.Booking.FindByUserID(ctx, sess.UserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	total, err := s.repo.Booking.CountByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	data := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, bookingResponse(b))
	}
	return response.NewPaginatedResponse(data, req.CurrentPage(), limit, total), nil
}

// Cancel is the patient-side cancellation of their own booking.
func (s *bookingService) Cancel(ctx context.Context, sess *utils.Session, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	booking, err := s.loadString(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sess, booking); err != nil {
		return nil, err
	}

	updated, err := cancelBooking(ctx, s.lifecycle, booking, req.Reason)
	if err != nil {
		return nil, err
	}

	resp := bookingResponse(updated)
	return &resp, nil
}

// cancelBooking is shared by the patient and staff cancel paths.
func cancelBooking(ctx context.Context, lc *lifecycle, booking *entity.Booking, reason string) (*entity.Booking, error) {
	now := time.Now()
	fields := repository.StatusFields{CancelledAt: &now}
	reason = strings.TrimSpace(reason)
	if reason != "" {
		fields.CancellationReason = &reason
	}

	updated, err := lc.transition(ctx, booking, entity.BookingStatusCancelled, fields)
	if err != nil {
		return nil, err
	}
	lc.notify(ctx, EventCancelled, updated, map[string]string{"reason": reason})
	return updated, nil
}
