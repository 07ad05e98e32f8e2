package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "card.log")
	logger, closer, err := New(Options{Level: "DEBUG", File: path})
	require.NoError(t, err)
	logger.Debug().Str("component", "card").Msg("resolved")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"component":"card"`)
	require.Contains(t, string(data), `"level":"debug"`)
}

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Out: &buf})
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestNewConsole(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, _, err := New(Options{Console: true, Out: &buf})
	require.NoError(t, err)
	logger.Info().Msg("hello")
	require.Contains(t, buf.String(), "hello")
	require.NotContains(t, buf.String(), `"message"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	t.Parallel()
	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
}
