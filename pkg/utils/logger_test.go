package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := InitLogger(AppConfig{Name: "care-test", LogPath: dir})
	require.NoError(t, err)

	logger.Info("booking approved")
	_ = logger.Sync()

	content, err := os.ReadFile(filepath.Join(dir, "care-test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "booking approved")
	assert.Contains(t, string(content), `"app":"care-test"`)
}

func TestInitLogger_StdoutOnly(t *testing.T) {
	logger, err := InitLogger(AppConfig{Debug: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}
