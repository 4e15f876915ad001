package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"
	"care-booking/pkg/metrics"
	"care-booking/pkg/notify"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationEvent string

const (
	EventCreated       NotificationEvent = "created"
	EventPaid          NotificationEvent = "paid"
	EventApproved      NotificationEvent = "approved"
	EventRejected      NotificationEvent = "rejected"
	EventRescheduled   NotificationEvent = "rescheduled"
	EventCompleted     NotificationEvent = "completed"
	EventCancelled     NotificationEvent = "cancelled"
	EventPaymentFailed NotificationEvent = "payment_failed"
)

type NotificationService interface {
	// Notify enqueues the message for event on every channel that applies to
	// booking. It reports whether all rows were stored and never fails the
	// caller.
	Notify(ctx context.Context, event NotificationEvent, booking *entity.Booking, extra map[string]string) bool
	ListDeadLetters(ctx context.Context, sess *utils.Session, page request.PaginatedRequest) (*response.PaginatedResponse[response.OutboxMessageResponse], error)
}

type notificationService struct {
	repo    *repository.Repository
	config  *utils.Config
	metrics *metrics.BookingMetrics
	log     *zap.Logger
}

func NewNotificationService(repo *repository.Repository, config *utils.Config, m *metrics.BookingMetrics, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:    repo,
		config:  config,
		metrics: m,
		log:     log.With(zap.String("service", "notification")),
	}
}

// crmPayload is posted as-is to the CRM webhook, so the keys are flat.
type crmPayload struct {
	Event           string  `json:"event"`
	ReferenceNumber string  `json:"reference_number"`
	BookingType     string  `json:"booking_type"`
	Status          string  `json:"status"`
	PatientName     string  `json:"patient_name"`
	PatientMobile   string  `json:"patient_mobile"`
	PatientEmail    string  `json:"patient_email,omitempty"`
	ItemName        string  `json:"item_name,omitempty"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime string  `json:"appointment_time,omitempty"`
	TotalAmount     float64 `json:"total_amount"`
	Reason          string  `json:"reason,omitempty"`
}

func (s *notificationService) Notify(ctx context.Context, event NotificationEvent, booking *entity.Booking, extra map[string]string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Notification panicked", zap.Any("panic", r), zap.String("event", string(event)))
			ok = false
		}
		s.metrics.ObserveNotification(string(event), ok)
	}()

	if booking == nil {
		return false
	}

	subject, body := composeMessage(event, booking, extra)
	payload, err := json.Marshal(crmPayload{
		Event:           string(event),
		ReferenceNumber: booking.ReferenceNumber,
		BookingType:     string(booking.BookingType),
		Status:          string(booking.Status),
		PatientName:     booking.PatientName,
		PatientMobile:   booking.PatientMobile,
		PatientEmail:    booking.PatientEmail,
		ItemName:        booking.ItemName,
		AppointmentDate: booking.AppointmentDate.Format("2006-01-02"),
		AppointmentTime: booking.AppointmentTime,
		TotalAmount:     booking.TotalAmount,
		Reason:          extra["reason"],
	})
	if err != nil {
		s.log.Error("Failed to encode notification payload", zap.Error(err))
		return false
	}

	var rows []*entity.OutboxMessage
	add := func(channel, recipient string) {
		rows = append(rows, &entity.OutboxMessage{
			BaseSimple: entity.BaseSimple{ID: uuid.New()},
			BookingID:  &booking.ID,
			Event:      string(event),
			Channel:    channel,
			Recipient:  recipient,
			Subject:    subject,
			Body:       body,
			Payload:    payload,
			Status:     entity.OutboxStatusPending,
		})
	}

	if booking.PatientMobile != "" {
		add(notify.ChannelSMS, booking.PatientMobile)
	}
	if booking.PatientEmail != "" {
		add(notify.ChannelEmail, booking.PatientEmail)
	}
	if event == EventCreated && s.config.Webhook.CRMURL != "" {
		add(notify.ChannelCRM, s.config.Webhook.CRMURL)
	}

	if err := s.repo.Outbox.InsertBatch(ctx, rows); err != nil {
		s.log.Error("Failed to enqueue notification",
			zap.Error(err),
			zap.String("event", string(event)),
			zap.Int("channels", len(rows)),
			zap.String("reference", booking.ReferenceNumber),
		)
		return false
	}
	return true
}

func composeMessage(event NotificationEvent, b *entity.Booking, extra map[string]string) (string, string) {
	when := b.AppointmentDate.Format("02 Jan 2006")
	if b.AppointmentTime != "" {
		when += " at " + b.AppointmentTime
	}
	reason := strings.TrimSpace(extra["reason"])

	var subject, body string
	switch event {
	case EventCreated:
		subject = "Booking received"
		body = fmt.Sprintf("Hi %s, your booking %s for %s is received. Please complete the payment to confirm.", b.PatientName, b.ReferenceNumber, when)
	case EventPaid:
		subject = "Payment received"
		body = fmt.Sprintf("Hi %s, we received Rs. %.2f for booking %s. Our team will review it shortly.", b.PatientName, b.TotalAmount, b.ReferenceNumber)
	case EventApproved:
		subject = "Booking approved"
		body = fmt.Sprintf("Hi %s, your booking %s is approved for %s.", b.PatientName, b.ReferenceNumber, when)
	case EventRejected:
		subject = "Booking rejected"
		body = fmt.Sprintf("Hi %s, your booking %s was rejected.", b.PatientName, b.ReferenceNumber)
		if reason != "" {
			body += " Reason: " + reason
		}
	case EventRescheduled:
		subject = "Booking rescheduled"
		body = fmt.Sprintf("Hi %s, your booking %s is rescheduled to %s.", b.PatientName, b.ReferenceNumber, when)
		if reason != "" {
			body += " Reason: " + reason
		}
	case EventCompleted:
		subject = "Booking completed"
		body = fmt.Sprintf("Hi %s, your booking %s is completed. Thank you for choosing us.", b.PatientName, b.ReferenceNumber)
	case EventCancelled:
		subject = "Booking cancelled"
		body = fmt.Sprintf("Hi %s, your booking %s has been cancelled.", b.PatientName, b.ReferenceNumber)
		if reason != "" {
			body += " Reason: " + reason
		}
	case EventPaymentFailed:
		subject = "Payment failed"
		body = fmt.Sprintf("Hi %s, the payment for booking %s did not go through. You can retry from your bookings page.", b.PatientName, b.ReferenceNumber)
	default:
		subject = "Booking update"
		body = fmt.Sprintf("Hi %s, your booking %s is now %s.", b.PatientName, b.ReferenceNumber, b.Status)
	}
	return subject, body
}

func (s *notificationService) ListDeadLetters(ctx context.Context, sess *utils.Session, page request.PaginatedRequest) (*response.PaginatedResponse[response.OutboxMessageResponse], error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	rows, err := s.repo.Outbox.ListDead(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}

	data := make([]response.OutboxMessageResponse, 0, len(rows))
	for _, m := range rows {
		data = append(data, response.OutboxToResponse(m))
	}
	// the dead-letter log has no count query; total reflects this page only
	return response.NewPaginatedResponse(data, page.CurrentPage(), page.Limit(), int64(page.Offset()+len(data))), nil
}

// whatsAppText prefills the click-to-chat link staff use to message the
// patient about the booking.
func whatsAppText(b *entity.Booking) string {
	return fmt.Sprintf("Hi %s, your booking %s is %s.", b.PatientName, b.ReferenceNumber, b.Status)
}

func bookingResponse(b *entity.Booking) response.BookingResponse {
	resp := response.BookingToResponse(b)
	if b.PatientMobile != "" {
		resp.WhatsAppLink = notify.WhatsAppLink(b.PatientMobile, whatsAppText(b))
	}
	return resp
}
