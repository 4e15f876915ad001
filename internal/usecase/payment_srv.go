package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/internal/dto/request"
	"care-booking/internal/dto/response"
	"care-booking/pkg/gateway"
	"care-booking/pkg/metrics"
	"care-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const currencyINR = "INR"

// PaymentGateway opens orders on the payment provider.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error)
}

// CallbackGuard records processed payment ids so replayed callbacks are
// recognised before touching the booking.
type CallbackGuard interface {
	MarkOnce(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type PaymentService interface {
	BuildSession(ctx context.Context, sess *utils.Session, req *request.PaymentSessionRequest) (*response.SessionParams, error)
	Verify(ctx context.Context, req *request.VerifyPaymentRequest) (*response.VerifyResult, error)
	HandleFailure(ctx context.Context, sess *utils.Session, req *request.PaymentFailureRequest) (*response.BookingResponse, error)
	RetryPayment(ctx context.Context, sess *utils.Session, req *request.PaymentSessionRequest) (*response.SessionParams, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type paymentService struct {
	*lifecycle
	config  *utils.Config
	gateway PaymentGateway
	guard   CallbackGuard
}

func NewPaymentService(
	repo *repository.Repository,
	config *utils.Config,
	gw PaymentGateway,
	guard CallbackGuard,
	notifier NotificationService,
	m *metrics.BookingMetrics,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		lifecycle: newLifecycle(repo, notifier, m, log.With(zap.String("service", "payment"))),
		config:    config,
		gateway:   gw,
		guard:     guard,
	}
}

func (s *paymentService) BuildSession(ctx context.Context, sess *utils.Session, req *request.PaymentSessionRequest) (*response.SessionParams, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	booking, err := s.loadString(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sess, booking); err != nil {
		return nil, err
	}

	return s.buildSession(ctx, booking)
}

func (s *paymentService) buildSession(ctx context.Context, booking *entity.Booking) (*response.SessionParams, error) {
	if booking.TotalAmount <= 0 {
		return nil, fmt.Errorf("%w: booking %s has no payable amount", ErrInvalidBooking, booking.ReferenceNumber)
	}
	if booking.Status != entity.BookingStatusPaymentPending {
		return nil, fmt.Errorf("%w: booking %s is %s, payment needs %s",
			ErrInvalidTransition, booking.ReferenceNumber, booking.Status, entity.BookingStatusPaymentPending)
	}
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: gateway not configured", ErrGatewayUnavailable)
	}

	amount := gateway.ToPaise(booking.TotalAmount)
	notes := map[string]string{
		"booking_id":       booking.ID.String(),
		"reference_number": booking.ReferenceNumber,
		"booking_type":     string(booking.BookingType),
	}

	if booking.OrderID == nil || *booking.OrderID == "" {
		order, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
			Amount:   amount,
			Currency: currencyINR,
			Receipt:  booking.ReferenceNumber,
			Notes:    notes,
		})
		if err != nil {
			s.log.Error("Failed to create gateway order", zap.Error(err), zap.String("reference", booking.ReferenceNumber))
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}

		updated, err := s.write(ctx, booking, booking.Status, repository.StatusFields{OrderID: &order.ID})
		if err != nil {
			return nil, err
		}
		booking = updated
		s.log.Info("Gateway order created", zap.String("reference", booking.ReferenceNumber), zap.String("order_id", order.ID))
	}

	return &response.SessionParams{
		Key:         s.gateway.KeyID(),
		OrderID:     *booking.OrderID,
		Amount:      amount,
		Currency:    currencyINR,
		Name:        s.config.Razorpay.CompanyName,
		Description: fmt.Sprintf("%s booking %s", booking.BookingType, booking.ReferenceNumber),
		Prefill: response.Prefill{
			Name:    booking.PatientName,
			Email:   booking.PatientEmail,
			Contact: booking.PatientMobile,
		},
		Notes: notes,
	}, nil
}

// Verify trusts nothing from the client until the callback signature checks
// out against the key secret.
func (s *paymentService) Verify(ctx context.Context, req *request.VerifyPaymentRequest) (*response.VerifyResult, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	err := gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.config.Razorpay.KeySecret)
	if err != nil {
		s.metrics.ObservePayment("callback", "invalid_signature")
		s.log.Warn("Payment signature rejected", zap.String("order_id", req.RazorpayOrderID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGatewayVerification, err)
	}

	booking, err := s.repo.Booking.FindByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, fmt.Errorf("find booking by order %s: %w", req.RazorpayOrderID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking for order %s", ErrNotFound, req.RazorpayOrderID)
	}

	return s.markPaid(ctx, booking, req.RazorpayPaymentID, "callback")
}

func (s *paymentService) markPaid(ctx context.Context, booking *entity.Booking, paymentID, source string) (*response.VerifyResult, error) {
	if isSettledBy(booking, paymentID) {
		return s.replay(booking, source), nil
	}

	if s.guard != nil {
		first, err := s.guard.MarkOnce(ctx, paymentID)
		switch {
		case err != nil:
			// the version check still stops a double transition
			s.log.Warn("Callback guard unavailable", zap.Error(err))
		case !first:
			// a mark left by a failed or interrupted write does not mean settled
			current, err := s.load(ctx, booking.ID)
			if err != nil {
				return nil, err
			}
			if isSettledBy(current, paymentID) {
				return s.replay(current, source), nil
			}
			booking = current
		}
	}

	status := entity.PaymentStatusCompleted
	updated, err := s.transition(ctx, booking, entity.BookingStatusPaid, repository.StatusFields{
		PaymentStatus: &status,
		PaymentID:     &paymentID,
	})
	if errors.Is(err, ErrVersionConflict) {
		current, loadErr := s.load(ctx, booking.ID)
		if loadErr == nil && isSettledBy(current, paymentID) {
			return s.replay(current, source), nil
		}
	}
	if err != nil {
		s.forget(ctx, paymentID)
		s.metrics.ObservePayment(source, "error")
		return nil, err
	}

	s.recordPayment(ctx, updated, entity.PaymentStatusCompleted, nil)
	s.metrics.ObservePayment(source, "ok")
	s.notify(ctx, EventPaid, updated, nil)

	return &response.VerifyResult{Success: true, Booking: bookingResponse(updated)}, nil
}

func isSettledBy(b *entity.Booking, paymentID string) bool {
	return b.Status == entity.BookingStatusPaid && b.PaymentID != nil && *b.PaymentID == paymentID
}

func (s *paymentService) replay(booking *entity.Booking, source string) *response.VerifyResult {
	s.metrics.ObservePayment(source, "replay")
	s.log.Info("Payment callback replayed", zap.String("reference", booking.ReferenceNumber))
	return &response.VerifyResult{Success: true, Replay: true, Booking: bookingResponse(booking)}
}

func (s *paymentService) forget(ctx context.Context, paymentID string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Forget(context.WithoutCancel(ctx), paymentID); err != nil {
		s.log.Warn("Failed to clear callback guard", zap.Error(err), zap.String("payment_id", paymentID))
	}
}

// recordPayment appends the audit row. The booking is already authoritative,
// so a failure here is logged only.
func (s *paymentService) recordPayment(ctx context.Context, booking *entity.Booking, status entity.PaymentStatus, reason *string) {
	payment := &entity.Payment{
		BaseNoDelete:  entity.BaseNoDelete{ID: uuid.New()},
		BookingID:     booking.ID,
		OrderID:       booking.OrderID,
		PaymentID:     booking.PaymentID,
		Amount:        booking.TotalAmount,
		Currency:      currencyINR,
		Status:        status,
		FailureReason: reason,
	}
	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Error("Failed to record payment", zap.Error(err), zap.String("reference", booking.ReferenceNumber))
	}
}

func (s *paymentService) HandleFailure(ctx context.Context, sess *utils.Session, req *request.PaymentFailureRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	booking, err := s.loadString(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sess, booking); err != nil {
		return nil, err
	}

	updated, err := s.failBooking(ctx, booking, req.Reason, "client")
	if err != nil {
		return nil, err
	}
	resp := bookingResponse(updated)
	return &resp, nil
}

// failBooking is a no-op for a booking already in Payment Failed.
func (s *paymentService) failBooking(ctx context.Context, booking *entity.Booking, reason, source string) (*entity.Booking, error) {
	if booking.Status == entity.BookingStatusPaymentFailed {
		return booking, nil
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Payment was not completed"
	}
	status := entity.PaymentStatusFailed
	updated, err := s.transition(ctx, booking, entity.BookingStatusPaymentFailed, repository.StatusFields{
		PaymentStatus:        &status,
		PaymentFailureReason: &reason,
	})
	if err != nil {
		return nil, err
	}

	s.recordPayment(ctx, updated, entity.PaymentStatusFailed, &reason)
	s.metrics.ObservePayment(source, "failed")
	s.notify(ctx, EventPaymentFailed, updated, map[string]string{"reason": reason})
	return updated, nil
}

func (s *paymentService) RetryPayment(ctx context.Context, sess *utils.Session, req *request.PaymentSessionRequest) (*response.SessionParams, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	booking, err := s.loadString(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sess, booking); err != nil {
		return nil, err
	}

	if booking.Status != entity.BookingStatusPaymentPending {
		status := entity.PaymentStatusPending
		booking, err = s.transition(ctx, booking, entity.BookingStatusPaymentPending, repository.StatusFields{
			PaymentStatus: &status,
		})
		if err != nil {
			return nil, err
		}
	}

	return s.buildSession(ctx, booking)
}

func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if err := gateway.VerifyWebhookSignature(body, signature, s.config.Razorpay.WebhookSecret); err != nil {
		s.metrics.ObservePayment("webhook", "invalid_signature")
		s.log.Warn("Webhook signature rejected", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrGatewayVerification, err)
	}

	evt, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	payment := evt.Payload.Payment.Entity
	if evt.Event != gateway.EventPaymentCaptured && evt.Event != gateway.EventPaymentFailed {
		s.log.Debug("Webhook event ignored", zap.String("event", evt.Event))
		return nil
	}

	booking, err := s.repo.Booking.FindByOrderID(ctx, payment.OrderID)
	if err != nil {
		return fmt.Errorf("find booking by order %s: %w", payment.OrderID, err)
	}
	if booking == nil {
		// orders opened outside this service are acknowledged and dropped
		s.log.Warn("Webhook for unknown order", zap.String("order_id", payment.OrderID), zap.String("event", evt.Event))
		return nil
	}

	switch evt.Event {
	case gateway.EventPaymentCaptured:
		if booking.PaymentID != nil && *booking.PaymentID == payment.ID {
			s.metrics.ObservePayment("webhook", "replay")
			return nil
		}
		_, err = s.markPaid(ctx, booking, payment.ID, "webhook")
	case gateway.EventPaymentFailed:
		// a failed attempt can be followed by a successful one on the same order
		if booking.Status != entity.BookingStatusPaymentPending {
			s.log.Info("Failure webhook ignored",
				zap.String("reference", booking.ReferenceNumber),
				zap.String("status", string(booking.Status)),
			)
			return nil
		}
		_, err = s.failBooking(ctx, booking, payment.ErrorDescription, "webhook")
	}
	return err
}
