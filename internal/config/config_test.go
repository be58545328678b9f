package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "finance", cfg.Chat.DefaultField)
	require.Equal(t, 60*time.Second, cfg.API.Timeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.API.Timeout = 10 * time.Millisecond
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Chat.DefaultField = ""
	require.Error(t, cfg.Validate())
}

func TestDatabasePathDefaultsToDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Global.DataDir = "/tmp/humint-data"
	cfg.Database.Path = ""
	require.Equal(t, filepath.Join("/tmp/humint-data", "humint.db"), cfg.DatabasePath())

	cfg.Database.Path = "/elsewhere/client.db"
	require.Equal(t, "/elsewhere/client.db", cfg.DatabasePath())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://api.example.com
  timeout: 30s
chat:
  default_field: consulting
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, "consulting", cfg.Chat.DefaultField)
	// Untouched keys keep defaults.
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HUMINT_API_BASE_URL", "https://env.example.com")
	t.Setenv("HUMINT_CHAT_DEFAULT_FIELD", "tech")

	cfg, err := LoadDefault()
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	require.Equal(t, "tech", cfg.Chat.DefaultField)
}
