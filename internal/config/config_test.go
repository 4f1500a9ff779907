package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-list/internal/models"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shopping.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7666", cfg.Addr)
	assert.Equal(t, "shopping_list.db", cfg.DatabasePath)
	assert.Equal(t, "admin", cfg.Username)
	assert.True(t, cfg.ForceHTTPS)
	assert.Equal(t, models.SortPendingFirst, cfg.SortOrder)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.InsecureSecret())
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Addr, cfg.Addr)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
addr = ":9000"
database_path = "/var/lib/shopping/list.db"
sort_order = "oldest-first"
session_ttl = "12h"
force_https = false
telegram_allowed = [10, 20]
`)

	t.Run("file values", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9000", cfg.Addr)
		assert.Equal(t, "/var/lib/shopping/list.db", cfg.DatabasePath)
		assert.Equal(t, models.SortOldestFirst, cfg.SortOrder)
		assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
		assert.False(t, cfg.ForceHTTPS)
		assert.True(t, cfg.TelegramChatAllowed(20))
		assert.False(t, cfg.TelegramChatAllowed(30))
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("SHOPPING_ADDR", ":8443")
		t.Setenv("SHOPPING_SORT_ORDER", " Pending-First ")
		t.Setenv("SECRET_KEY", "s3cret")
		t.Setenv("SHOPPING_TELEGRAM_ALLOWED", "1,2,3")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":8443", cfg.Addr)
		assert.Equal(t, models.SortPendingFirst, cfg.SortOrder)
		assert.Equal(t, []int64{1, 2, 3}, cfg.TelegramAllowed)
		assert.False(t, cfg.InsecureSecret())
		// Остальное по-прежнему из файла
		assert.Equal(t, "/var/lib/shopping/list.db", cfg.DatabasePath)
	})
}

func TestLoadInvalid(t *testing.T) {
	t.Run("bad sort order", func(t *testing.T) {
		t.Setenv("SHOPPING_SORT_ORDER", "alphabetical")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown sort order")
	})

	t.Run("empty password", func(t *testing.T) {
		path := writeFile(t, `password = ""`)
		_, err := Load(path)
		assert.ErrorContains(t, err, "username and password")
	})

	t.Run("broken toml", func(t *testing.T) {
		path := writeFile(t, `addr = `)
		_, err := Load(path)
		assert.ErrorContains(t, err, "config parse failed")
	})
}

func TestTelegramChatAllowedWithoutList(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.TelegramChatAllowed(12345))
}

func TestTLSEnabled(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.CertFile = filepath.Join(dir, "cert.pem")
	cfg.KeyFile = filepath.Join(dir, "key.pem")
	assert.False(t, cfg.TLSEnabled())

	require.NoError(t, os.WriteFile(cfg.CertFile, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(cfg.KeyFile, []byte("x"), 0o600))
	assert.True(t, cfg.TLSEnabled())
}
