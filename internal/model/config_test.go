package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, time.Monday, cfg.WeekStart())
	assert.True(t, cfg.Calendar.AtomicReorder)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, time.Minute, cfg.RefreshInterval())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "calendar:\n  week_starts_on: sun\n  atomic_reorder: false\ndisplay:\n  refresh_interval_sec: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, cfg.WeekStart())
	assert.False(t, cfg.Calendar.AtomicReorder)
	assert.Zero(t, cfg.RefreshInterval())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PRODCAL_CALENDAR_WEEK_STARTS_ON", "saturday")
	t.Setenv("PRODCAL_DISPLAY_THEME", "dark")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, cfg.WeekStart())
	assert.Equal(t, "dark", cfg.Display.Theme)
}

func TestLoadConfig_RejectsUnknownWeekday(t *testing.T) {
	t.Setenv("PRODCAL_CALENDAR_WEEK_STARTS_ON", "someday")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "week_starts_on")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Calendar.WeekStartsOn = "wednesday"
	cfg.Calendar.AtomicReorder = false
	cfg.Display.RefreshIntervalSec = 15
	cfg.Logging.Level = "debug"

	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, got.WeekStart())
	assert.False(t, got.Calendar.AtomicReorder)
	assert.Equal(t, 15*time.Second, got.RefreshInterval())
	assert.Equal(t, "debug", got.Logging.Level)
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" Tue ")
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, d)

	_, err = ParseWeekday("tues")
	assert.Error(t, err)
}
