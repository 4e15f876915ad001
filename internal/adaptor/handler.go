package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"care-booking/internal/dto/request"
	"care-booking/internal/usecase"
	"care-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Patient *PatientHandler
	Catalog *CatalogHandler
	Booking *BookingHandler
	Payment *PaymentHandler
	Staff   *StaffHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Patient: NewPatientHandler(service.Patient, log),
		Catalog: NewCatalogHandler(service.Catalog, log),
		Booking: NewBookingHandler(service.Booking, log),
		Payment: NewPaymentHandler(service.Payment, log),
		Staff:   NewStaffHandler(service.Staff, log),
		Admin:   NewAdminHandler(service.Catalog, service.Notification, log),
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct
// validator. It writes the 400 itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return validate(w, dst)
}

// decodeOptional is decodeAndValidate for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return validate(w, dst)
}

func validate(w http.ResponseWriter, dst any) bool {
	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

func sessionFrom(w http.ResponseWriter, r *http.Request) (*utils.Session, bool) {
	session, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return nil, false
	}
	return session, true
}

func paginationFrom(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}
}

func clientInfo(r *http.Request) request.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return request.ClientInfo{UserAgent: r.UserAgent(), IPAddress: ip}
}

// handleServiceError maps workflow errors onto the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrInvalidBooking):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	case errors.Is(err, usecase.ErrGatewayVerification):
		log.Warn(operation+" failed - signature mismatch", zap.Error(err))
		utils.ResponseBadRequest(w, "Payment verification failed", nil)

	case errors.Is(err, usecase.ErrGatewayUnavailable):
		log.Error(operation+" failed - gateway unavailable", zap.Error(err))
		utils.ResponseBadGateway(w, "Payment gateway unavailable")

	case errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrVersionConflict),
		errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, errMsg)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, errMsg)

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, errMsg)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
