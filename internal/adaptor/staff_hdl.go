package adaptor

import (
	"net/http"

	"care-booking/internal/dto/request"
	"care-booking/internal/usecase"
	"care-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type StaffHandler struct {
	service usecase.StaffService
	log     *zap.Logger
}

func NewStaffHandler(service usecase.StaffService, log *zap.Logger) *StaffHandler {
	return &StaffHandler{
		service: service,
		log:     log.With(zap.String("handler", "staff")),
	}
}

// GetPendingBookings handles GET /api/staff/bookings/pending?type=&from=&to=
func (h *StaffHandler) GetPendingBookings(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := &request.PendingBookingsQuery{
		BookingType: q.Get("type"),
		DateFrom:    q.Get("from"),
		DateTo:      q.Get("to"),
	}
	if !validate(w, query) {
		return
	}

	bookings, err := h.service.GetPendingBookings(r.Context(), session, query)
	if err != nil {
		handleServiceError(w, h.log, err, "get pending bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetStats handles GET /api/staff/stats
func (h *StaffHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(r.Context(), session)
	if err != nil {
		handleServiceError(w, h.log, err, "get stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}

// Approve handles POST /api/staff/bookings/{id}/approve
func (h *StaffHandler) Approve(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.ApproveBookingRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	booking, err := h.service.Approve(r.Context(), session, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "approve booking")
		return
	}

	utils.ResponseSuccess(w, "Booking approved", booking)
}

// Reject handles POST /api/staff/bookings/{id}/reject
func (h *StaffHandler) Reject(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.RejectBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.Reject(r.Context(), session, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "reject booking")
		return
	}

	utils.ResponseSuccess(w, "Booking rejected", booking)
}

// Reschedule handles POST /api/staff/bookings/{id}/reschedule
func (h *StaffHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.RescheduleBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.Reschedule(r.Context(), session, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "reschedule booking")
		return
	}

	utils.ResponseSuccess(w, "Booking rescheduled", booking)
}

// Complete handles POST /api/staff/bookings/{id}/complete
func (h *StaffHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	booking, err := h.service.Complete(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "complete booking")
		return
	}

	utils.ResponseSuccess(w, "Booking completed", booking)
}

// Cancel handles POST /api/staff/bookings/{id}/cancel
func (h *StaffHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.CancelBookingRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	booking, err := h.service.Cancel(r.Context(), session, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}
