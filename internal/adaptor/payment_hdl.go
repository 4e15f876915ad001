package adaptor

import (
	"io"
	"net/http"

	"care-booking/internal/dto/request"
	"care-booking/internal/usecase"
	"care-booking/pkg/utils"

	"go.uber.org/zap"
)

const (
	webhookSignatureHeader = "X-Razorpay-Signature"
	maxWebhookBody         = 1 << 20
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// CreateSession handles POST /api/payments/session
func (h *PaymentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.PaymentSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	params, err := h.service.BuildSession(r.Context(), session, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create payment session")
		return
	}

	utils.ResponseSuccess(w, "success", params)
}

// Verify handles POST /api/payments/verify with the checkout callback fields.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify payment")
		return
	}

	message := "Payment verified"
	if result.Replay {
		message = "Payment already verified"
	}
	utils.ResponseSuccess(w, message, result)
}

// Failure handles POST /api/payments/failure
func (h *PaymentHandler) Failure(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.PaymentFailureRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.HandleFailure(r.Context(), session, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "record payment failure")
		return
	}

	utils.ResponseSuccess(w, "Payment failure recorded", booking)
}

// Retry handles POST /api/payments/retry
func (h *PaymentHandler) Retry(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.PaymentSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	params, err := h.service.RetryPayment(r.Context(), session, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "retry payment")
		return
	}

	utils.ResponseSuccess(w, "success", params)
}

// Webhook handles POST /api/payments/webhook. The signature covers the raw
// body so it is read before any decoding.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), body, r.Header.Get(webhookSignatureHeader)); err != nil {
		handleServiceError(w, h.log, err, "handle payment webhook")
		return
	}

	utils.ResponseSuccess(w, "ok", nil)
}
