package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestInit_WritesToFile(t *testing.T) {
	restoreGlobals(t)
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	closer, err := Init(Options{Dir: dir, Level: "WARN"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("filtered out")
	log.Warn().Str("day", "2024-03-13").Msg("reorder failed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "reorder failed")
	assert.Contains(t, string(data), `"day":"2024-03-13"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestInit_VerboseOverridesLevel(t *testing.T) {
	restoreGlobals(t)

	closer, err := Init(Options{Dir: t.TempDir(), Level: "error", Verbose: true})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	restoreGlobals(t)

	_, err := Init(Options{Dir: t.TempDir(), Level: "loud"})
	assert.Error(t, err)
}
