package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", config.App.Port)
	assert.Equal(t, "https://api.razorpay.com", config.Razorpay.BaseURL)
	assert.Equal(t, "log", config.Email.Provider)
	assert.Equal(t, 5, config.Outbox.MaxAttempts)
	assert.Equal(t, 5*time.Second, config.Outbox.Interval)
	assert.Equal(t, 10*time.Second, config.Webhook.Timeout)
	assert.Equal(t, int32(10), config.Database.MaxConns)
	assert.Equal(t, []string{"*"}, config.App.CORSOrigins)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "8")
	t.Setenv("STAFF_EMAIL_DOMAIN", "care.example")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", config.App.Port)
	assert.Equal(t, "rzp_test_key", config.Razorpay.KeyID)
	assert.Equal(t, 8, config.Outbox.MaxAttempts)
	assert.Equal(t, "care.example", config.Staff.EmailDomain)
}

func TestLoadConfig_SplitsCORSOrigins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example, https://admin.example,,")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, config.App.CORSOrigins)
}
