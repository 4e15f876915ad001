package wire

import (
	"care-booking/internal/adaptor"
	"care-booking/internal/data/repository"
	"care-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePatient(
	r chi.Router,
	patientHandler *adaptor.PatientHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/patient", func(r chi.Router) {
		r.Use(authenticated(repo, config, log))

		r.Get("/profile", patientHandler.GetProfile)
		r.Put("/profile", patientHandler.UpdateProfile)
	})
}
