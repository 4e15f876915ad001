// internal/wire/wire.go
package wire

import (
	"net/http"

	"care-booking/internal/adaptor"
	"care-booking/internal/data/repository"
	"care-booking/internal/usecase"
	"care-booking/pkg/middleware"
	"care-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and the router. /metrics serves the
// default prometheus registry.
func Wiring(repo *repository.Repository, config *utils.Config, opts usecase.Options, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, opts, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, repo, config, opts, logger),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	opts usecase.Options,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger, opts.Metrics))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	wireAuth(r, handler.Auth, repo, config, logger)
	wirePatient(r, handler.Patient, repo, config, logger)
	wireCatalog(r, handler.Catalog, repo, config, logger)
	wireBooking(r, handler.Booking, repo, config, logger)
	wirePayment(r, handler.Payment, repo, config, logger)
	wireStaff(r, handler.Staff, repo, config, logger)
	wireAdmin(r, handler.Admin, repo, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func authenticated(repo *repository.Repository, config *utils.Config, log *zap.Logger) func(http.Handler) http.Handler {
	return middleware.AuthSession(repo.Session, config.JWT.Secret, log)
}
