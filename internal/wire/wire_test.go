package wire

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"care-booking/internal/data/repository"
	"care-booking/internal/usecase"
	"care-booking/pkg/metrics"
	"care-booking/pkg/utils"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	config := &utils.Config{
		App: utils.AppConfig{CORSOrigins: []string{"*"}},
		JWT: utils.JWTConfig{Secret: "wire-secret", ExpiryHours: 1},
	}
	opts := usecase.Options{Metrics: metrics.NewBookingMetrics(prometheus.NewRegistry())}

	return Wiring(repository.NewRepository(mock, zap.NewNop()), config, opts, zap.NewNop())
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	app := newTestApp(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/bookings"},
		{http.MethodPost, "/api/payments/session"},
		{http.MethodGet, "/api/staff/stats"},
		{http.MethodPost, "/api/staff/bookings/6f1c2c56-7a53-4a57-9d54-2b8f3d7c9e10/approve"},
		{http.MethodGet, "/api/admin/outbox/dead"},
		{http.MethodGet, "/api/patient/profile"},
		{http.MethodPost, "/api/logout"},
	}

	for _, rt := range routes {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equalf(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}
}

func TestRouter_WebhookIsPublic(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil))

	// reaches the signature check instead of the auth middleware
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
