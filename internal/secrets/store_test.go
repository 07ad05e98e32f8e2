package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	s := Open(filepath.Join(t.TempDir(), "nested"))

	_, err := s.FetchToken("http://ha.local:8123")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.StoreToken("http://HA.local:8123/", "  secret-token "))
	tok, err := s.FetchToken("http://ha.local:8123")
	require.NoError(t, err)
	require.Equal(t, "secret-token", tok)

	raw, err := os.ReadFile(filepath.Join(s.dir, fileName))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token")

	info, err := os.Stat(filepath.Join(s.dir, fileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.DeleteToken("http://ha.local:8123"))
	_, err = s.FetchToken("http://ha.local:8123")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeleteToken("http://ha.local:8123"), ErrNotFound)
}

func TestTokenValidation(t *testing.T) {
	t.Parallel()
	s := Open(t.TempDir())
	require.Error(t, s.StoreToken(" ", "x"))
	require.Error(t, s.StoreToken("http://ha", " "))
	_, err := s.FetchToken("")
	require.Error(t, err)
}
