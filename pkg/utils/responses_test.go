package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBadRequest_CarriesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseBadRequest(rec, "Validation failed", map[string]string{"reason": "reason is required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Status)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, map[string]any{"reason": "reason is required"}, body.Errors)
}

func TestResponseSuccess_OmitsEmptyErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseSuccess(rec, "ok", map[string]int{"total": 3})

	assert.JSONEq(t, `{"status":true,"message":"ok","data":{"total":3}}`, rec.Body.String())
}

func TestResponseBadGateway(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseBadGateway(rec, "Payment gateway unavailable")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
