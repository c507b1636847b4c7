package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", s.BaseURL())
	assert.Equal(t, 30, s.TimeoutSeconds())
	assert.Equal(t, "sqlite://suara.db", s.DatabaseURL())
	assert.Empty(t, s.Token())
}

func TestSaveSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSession("tok-123", "u-1", "sari"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", again.Token())
	assert.Equal(t, "u-1", again.UserID())
	assert.Equal(t, "sari", again.Username())

	require.NoError(t, again.ClearSession())
	cleared, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Empty(t, cleared.Token())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://file:1\"\n"), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file:1", s.BaseURL())

	t.Setenv("SUARA_API_BASE_URL", "http://env:2")
	s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", s.BaseURL())
}

func TestLoadSettingsRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nbase_url = "), 0o600))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}
