package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30, cfg.Directory.RecencyDays)
	assert.Equal(t, "/auth/oauth/token", cfg.RMM.TokenPath)
	assert.Equal(t, "/web/api/v2.1", cfg.EDR.APIPath)
	assert.Equal(t, "secret", cfg.Credentials.Vault.Mount)
	assert.Equal(t, 120, cfg.Reconcile.TimeoutSeconds)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "RMM_BASE_URL=https://rmm.example.test\n" +
		"CREDENTIALS_RMM_PASSWORD=s3cret\n" +
		"RECONCILE_COMPARISONS=directory:rmm\n" +
		"DIRECTORY_RECENCY_DAYS=14\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	t.Cleanup(func() {
		for _, key := range []string{"RMM_BASE_URL", "CREDENTIALS_RMM_PASSWORD", "RECONCILE_COMPARISONS", "DIRECTORY_RECENCY_DAYS"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://rmm.example.test", cfg.RMM.BaseURL)
	assert.True(t, cfg.RMM.Enabled())
	assert.Equal(t, "s3cret", cfg.Credentials.RMM.Password)
	assert.Equal(t, "directory:rmm", cfg.Reconcile.Comparisons)
	assert.Equal(t, 14, cfg.Directory.RecencyDays)
}
