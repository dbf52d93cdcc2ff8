package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"eino_chat_bridge/src/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOutputSplitsErrors(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	t.Cleanup(Close)

	out, err := buildOutput(model.LogConfig{Format: "json", Output: "file", Dir: dir}, now)
	require.NoError(t, err)

	l := zerolog.New(out)
	l.Info().Msg("routine")
	l.Error().Msg("broken")

	all, err := os.ReadFile(filepath.Join(dir, "2025-03-14.log"))
	require.NoError(t, err)
	assert.Contains(t, string(all), "routine")
	assert.Contains(t, string(all), "broken")

	errorsOnly, err := os.ReadFile(filepath.Join(dir, "2025-03-14.error.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errorsOnly), "routine")
	assert.Contains(t, string(errorsOnly), "broken")
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	err := InitLogger(model.LogConfig{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestTimeFieldFormat(t *testing.T) {
	assert.Equal(t, zerolog.TimeFormatUnix, timeFieldFormat("UNIX"))
	assert.Equal(t, time.RFC3339, timeFieldFormat(""))
}
