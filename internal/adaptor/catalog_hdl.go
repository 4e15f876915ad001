package adaptor

import (
	"net/http"

	"care-booking/internal/dto/request"
	"care-booking/internal/usecase"
	"care-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the public test and doctor listings.
type CatalogHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// ListTests handles GET /api/tests?category=&page=&per_page=
func (h *CatalogHandler) ListTests(w http.ResponseWriter, r *http.Request) {
	query := &request.TestListQuery{
		Category:         r.URL.Query().Get("category"),
		PaginatedRequest: paginationFrom(r),
	}

	tests, err := h.service.ListTests(r.Context(), query)
	if err != nil {
		handleServiceError(w, h.log, err, "list tests")
		return
	}

	utils.ResponseSuccess(w, "success", tests)
}

// GetTest handles GET /api/tests/{code}
func (h *CatalogHandler) GetTest(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		utils.ResponseBadRequest(w, "Test code is required", nil)
		return
	}

	test, err := h.service.GetTest(r.Context(), code)
	if err != nil {
		handleServiceError(w, h.log, err, "get test")
		return
	}

	utils.ResponseSuccess(w, "success", test)
}

// ListDoctors handles GET /api/doctors?specialization=
func (h *CatalogHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	query := &request.DoctorListQuery{
		Specialization:   r.URL.Query().Get("specialization"),
		PaginatedRequest: paginationFrom(r),
	}

	doctors, err := h.service.ListDoctors(r.Context(), query)
	if err != nil {
		handleServiceError(w, h.log, err, "list doctors")
		return
	}

	utils.ResponseSuccess(w, "success", doctors)
}

// GetDoctor handles GET /api/doctors/{id}
func (h *CatalogHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.service.GetDoctor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get doctor")
		return
	}

	utils.ResponseSuccess(w, "success", doctor)
}
