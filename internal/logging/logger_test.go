package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/USSTM/wms-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestInit_WritesJSONToFile(t *testing.T) {
	restore(t)

	file := filepath.Join(t.TempDir(), "nested", "wms.log")
	require.NoError(t, Init(&config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Filename: file,
		MaxSize:  1,
	}))

	Info("reference data loaded", "kind", "pools")
	Debug("hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"reference data loaded"`)
	assert.Contains(t, string(data), `"kind":"pools"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestWith(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	SetLogger(slog.New(newHandler(&buf, "text", slog.LevelInfo)))

	With("request_id", "r-1").Warn("slow request")
	assert.Contains(t, buf.String(), "request_id=r-1")
	assert.Contains(t, buf.String(), "level=WARN")
}

func restore(t *testing.T) {
	prev, prevDefault := logger, slog.Default()
	t.Cleanup(func() {
		logger = prev
		slog.SetDefault(prevDefault)
	})
}
