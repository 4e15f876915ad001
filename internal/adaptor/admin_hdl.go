package adaptor

import (
	"net/http"

	"care-booking/internal/dto/request"
	"care-booking/internal/usecase"
	"care-booking/pkg/utils"

	"go.uber.org/zap"
)

type AdminHandler struct {
	catalog  usecase.CatalogService
	notifier usecase.NotificationService
	log      *zap.Logger
}

func NewAdminHandler(catalog usecase.CatalogService, notifier usecase.NotificationService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:  catalog,
		notifier: notifier,
		log:      log.With(zap.String("handler", "admin")),
	}
}

// UpsertTest handles POST /api/admin/tests
func (h *AdminHandler) UpsertTest(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.UpsertTestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	test, created, err := h.catalog.UpsertTest(r.Context(), session, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "upsert test")
		return
	}

	if created {
		utils.ResponseCreated(w, "Test created", test)
		return
	}
	utils.ResponseSuccess(w, "Test updated", test)
}

// CreateDoctor handles POST /api/admin/doctors
func (h *AdminHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req request.CreateDoctorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doctor, err := h.catalog.CreateDoctor(r.Context(), session, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create doctor")
		return
	}

	utils.ResponseCreated(w, "Doctor created", doctor)
}

// DeadLetters handles GET /api/admin/outbox/dead
func (h *AdminHandler) DeadLetters(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	messages, err := h.notifier.ListDeadLetters(r.Context(), session, paginationFrom(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list dead letters")
		return
	}

	utils.ResponseSuccess(w, "success", messages)
}
