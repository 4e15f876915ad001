package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"
	"care-booking/pkg/metrics"
	"care-booking/pkg/utils"

	"go.uber.org/zap"
)

// StaffService is the review queue. Every action is a version-checked
// transition followed by one notification.
type StaffService interface {
	Approve(ctx context.Context, sess *utils.Session, bookingID string, req *request.ApproveBookingRequest) (*response.BookingResponse, error)
	Reject(ctx context.Context, sess *utils.Session, bookingID string, req *request.RejectBookingRequest) (*response.BookingResponse, error)
	Reschedule(ctx context.Context, sess *utils.Session, bookingID string, req *request.RescheduleBookingRequest) (*response.BookingResponse, error)
	Complete(ctx context.Context, sess *utils.Session, bookingID string) (*response.BookingResponse, error)
	Cancel(ctx context.Context, sess *utils.Session, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error)

	GetPendingBookings(ctx context.Context, sess *utils.Session, query *request.PendingBookingsQuery) ([]response.BookingResponse, error)
	GetStats(ctx context.Context, sess *utils.Session) (*response.StatsResponse, error)
}

type staffService struct {
	*lifecycle
}

func NewStaffService(
	repo *repository.Repository,
	notifier NotificationService,
	m *metrics.BookingMetrics,
	log *zap.Logger,
) StaffService {
	return &staffService{
		lifecycle: newLifecycle(repo, notifier, m, log.With(zap.String("service", "staff"))),
	}
}

// loadForReview loads a booking for a staff action. Review actions need a
// settled payment.
func (s *staffService) loadForReview(ctx context.Context, sess *utils.Session, bookingID string) (*entity.Booking, error) {
	if err := requireStaff(sess); err != nil {
		return nil, err
	}
	booking, err := s.loadString(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus != entity.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: booking %s payment is %s",
			ErrInvalidTransition, booking.ReferenceNumber, booking.PaymentStatus)
	}
	return booking, nil
}

func (s *staffService) Approve(ctx context.Context, sess *utils.Session, bookingID string, req *request.ApproveBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	booking, err := s.loadForReview(ctx, sess, bookingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fields := repository.StatusFields{ApprovedBy: &sess.UserID, ApprovedAt: &now}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		fields.Notes = &notes
	}

	updated, err := s.transition(ctx, booking, entity.BookingStatusApproved, fields)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, EventApproved, updated, nil)

	resp := bookingResponse(updated)
	return &resp, nil
}

func (s *staffService) Reject(ctx context.Context, sess *utils.Session, bookingID string, req *request.RejectBookingRequest) (*response.BookingResponse, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	booking, err := s.loadForReview(ctx, sess, bookingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.transition(ctx, booking, entity.BookingStatusRejected, repository.StatusFields{
		RejectedBy:      &sess.UserID,
		RejectedAt:      &now,
		RejectionReason: &req.Reason,
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, EventRejected, updated, map[string]string{"reason": req.Reason})

	resp := bookingResponse(updated)
	return &resp, nil
}

func (s *staffService) Reschedule(ctx context.Context, sess *utils.Session, bookingID string, req *request.RescheduleBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	newDate, err := time.Parse("2006-01-02", req.NewDate)
	if err != nil {
		return nil, fmt.Errorf("%w: new_date: Must match the layout 2006-01-02", ErrValidation)
	}
	booking, err := s.loadForReview(ctx, sess, bookingID)
	if err != nil {
		return nil, err
	}

	fields := repository.StatusFields{
		AppointmentDate: &newDate,
		AppointmentTime: &req.NewTime,
		RescheduledBy:   &sess.UserID,
	}
	reason := strings.TrimSpace(req.Reason)
	if reason != "" {
		fields.RescheduleReason = &reason
	}

	updated, err := s.transition(ctx, booking, entity.BookingStatusRescheduled, fields)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, EventRescheduled, updated, map[string]string{"reason": reason})

	resp := bookingResponse(updated)
	return &resp, nil
}

func (s *staffService) Complete(ctx context.Context, sess *utils.Session, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadForReview(ctx, sess, bookingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.transition(ctx, booking, entity.BookingStatusCompleted, repository.StatusFields{CompletedAt: &now})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, EventCompleted, updated, nil)

	resp := bookingResponse(updated)
	return &resp, nil
}

// Cancel does not require a settled payment; staff may drop unpaid bookings.
func (s *staffService) Cancel(ctx context.Context, sess *utils.Session, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	if err := requireStaff(sess); err != nil {
		return nil, err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	booking, err := s.loadString(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	updated, err := cancelBooking(ctx, s.lifecycle, booking, req.Reason)
	if err != nil {
		return nil, err
	}
	resp := bookingResponse(updated)
	return &resp, nil
}

func (s *staffService) GetPendingBookings(ctx context.Context, sess *utils.Session, query *request.PendingBookingsQuery) ([]response.BookingResponse, error) {
	if err := requireStaff(sess); err != nil {
		return nil, err
	}
	if errs := utils.ValidateStruct(query); len(errs) > 0 {
		return nil, validationError(errs)
	}

	filter := repository.PendingFilter{BookingType: entity.BookingType(query.BookingType)}
	if query.DateFrom != "" {
		from, _ := time.Parse("2006-01-02", query.DateFrom)
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, _ := time.Parse("2006-01-02", query.DateTo)
		filter.DateTo = &to
	}

	bookings, err := s.repo.Booking.FindPending(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list pending bookings: %w", err)
	}

	data := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, bookingResponse(b))
	}
	return data, nil
}

func (s *staffService) GetStats(ctx context.Context, sess *utils.Session) (*response.StatsResponse, error) {
	if err := requireStaff(sess); err != nil {
		return nil, err
	}

	rows, err := s.repo.Booking.ListStatusTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load booking stats: %w", err)
	}
	stats := computeStats(rows)
	return &stats, nil
}

func computeStats(rows []repository.StatusType) response.StatsResponse {
	var stats response.StatsResponse
	for _, r := range rows {
		stats.Total++
		switch r.Status {
		case entity.BookingStatusPaymentPending, entity.BookingStatusPaid:
			stats.Pending++
		case entity.BookingStatusApproved:
			stats.Approved++
		case entity.BookingStatusRejected:
			stats.Rejected++
		}
		switch r.BookingType {
		case entity.BookingTypeTest:
			stats.Tests++
		case entity.BookingTypeDoctor:
			stats.Doctors++
		case entity.BookingTypeMedicine:
			stats.Medicine++
		}
	}
	return stats
}
