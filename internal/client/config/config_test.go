package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/dnahub/internal/client/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8001", c.APIBaseURL)
	assert.Equal(t, "dnahub.db", c.DatabasePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 5.0, c.RequestsPerSecond)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, nav.DefaultSections, c.Sections)
	assert.Equal(t, 150.0, c.HeaderOffset)
	assert.Equal(t, 100.0, c.ActivationOffset)
	assert.Equal(t, 100.0, c.HomeTolerance)
	assert.Len(t, c.Layout, len(nav.DefaultSections))
}

func TestDefaultLayout_CoversDefaultSections(t *testing.T) {
	layout := DefaultLayout()
	for _, id := range nav.DefaultSections {
		_, ok := layout[id]
		assert.True(t, ok, id)
	}
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv(BackendURLEnv, "")

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:8001", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{"api_base_url": "http://json:1"})
	t.Setenv(BackendURLEnv, "http://env:1")

	os.Args = []string{"testbin"}
	assert.Equal(t, "http://env:1", LoadConfig().APIBaseURL)

	os.Args = []string{"testbin", "-c", path}
	assert.Equal(t, "http://json:1", LoadConfig().APIBaseURL)

	os.Args = []string{"testbin", "-c", path, "-a", "http://flag:1"}
	assert.Equal(t, "http://flag:1", LoadConfig().APIBaseURL)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		c := Config{LogLevel: in}
		assert.Equal(t, want, c.SlogLevel(), in)
	}
}
