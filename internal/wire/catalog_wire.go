package wire

import (
	"care-booking/internal/adaptor"
	"care-booking/internal/data/repository"
	"care-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCatalog(
	r chi.Router,
	catalogHandler *adaptor.CatalogHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/tests", catalogHandler.ListTests)
	r.Get("/api/tests/{code}", catalogHandler.GetTest)
	r.Get("/api/doctors", catalogHandler.ListDoctors)
	r.Get("/api/doctors/{id}", catalogHandler.GetDoctor)
}
