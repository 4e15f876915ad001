package adaptor

import (
	"net/http"

	"care-booking/internal/dto/request"
	"care-booking/internal/usecase"
	"care-booking/pkg/utils"

	"go.uber.org/zap"
)

type PatientHandler struct {
	service usecase.PatientService
	log     *zap.Logger
}

func NewPatientHandler(service usecase.PatientService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{
		service: service,
		log:     log.With(zap.String("handler", "patient")),
	}
}

// GetProfile handles GET /api/patient/profile
func (h *PatientHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), session)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", profile)
}

// UpdateProfile handles PUT /api/patient/profile
func (h *PatientHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.UpdatePatientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), session, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated", profile)
}
