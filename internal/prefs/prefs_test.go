package prefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-list/internal/models"
)

func TestCredentials(t *testing.T) {
	t.Setenv("SHOPPING_TOKEN", "")
	s := NewStore(filepath.Join(t.TempDir(), "home"))

	c, err := s.Credentials()
	require.NoError(t, err)
	assert.Nil(t, c, "not logged in yet")

	assert.Error(t, s.SaveCredentials("https://shop", "  ", time.Time{}))

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, s.SaveCredentials("https://shop", "Bearer abc", exp))

	info, err := os.Stat(filepath.Join(s.Dir(), credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	c, err = s.Credentials()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "abc", c.Token)
	assert.Equal(t, "https://shop", c.Server)
	assert.Equal(t, "file", c.Source)
	assert.True(t, exp.Equal(c.ExpiresAt))

	require.NoError(t, s.DeleteCredentials())
	require.NoError(t, s.DeleteCredentials())
	c, err = s.Credentials()
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("SHOPPING_TOKEN", "bearer from-env")
	s := NewStore(t.TempDir())

	c, err := s.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Token)
	assert.Equal(t, "env", c.Source)
}

func TestTheme(t *testing.T) {
	s := NewStore(t.TempDir())

	theme, err := s.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, theme)

	require.NoError(t, s.SaveTheme(models.ThemeDark))
	theme, err = s.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)
}

func TestCorruptFile(t *testing.T) {
	t.Setenv("SHOPPING_TOKEN", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, credFileName), []byte("{"), 0o600))

	_, err := NewStore(dir).Credentials()
	assert.ErrorContains(t, err, "parse credentials.json")
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("SHOPPING_HOME", "/tmp/custom-shopping")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-shopping", dir)
}
