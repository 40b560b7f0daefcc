package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
timeout: 45s
fatal_build_warnings: true
priorities:
  EquityHistorical: [beta, alpha]
credential_keys:
  gamma: [gamma_api_key]
`))
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, cfg.Timeout.Std())
		assert.True(t, cfg.FatalBuildWarnings)
		assert.Equal(t, []string{"beta", "alpha"}, cfg.Priorities["EquityHistorical"])
		assert.Equal(t, []string{"gamma_api_key"}, cfg.CredentialKeys["gamma"])
	})

	t.Run("timeout as bare seconds", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "timeout: 10\n"))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, cfg.Timeout.Std())
	})

	t.Run("empty file keeps the defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.Timeout.Std())
		assert.False(t, cfg.FatalBuildWarnings)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := Load(writeConfig(t, "timeout: soon\n"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestCredentialsFromEnv(t *testing.T) {
	cfg := Default()
	cfg.CredentialKeys = map[string][]string{
		"gamma": {"gamma_api_key"},
		"delta": {"delta_api_key", "delta_secret"},
		"empty": {"unset_key"},
	}

	t.Setenv("GAMMA_API_KEY", "g-123")
	t.Setenv("DELTA_API_KEY", "d-123")
	t.Setenv("DELTA_SECRET", "d-456")
	os.Unsetenv("UNSET_KEY")

	creds := cfg.CredentialsFromEnv()
	assert.Equal(t, "g-123", creds["gamma"]["gamma_api_key"])
	assert.Equal(t, "d-123", creds["delta"]["delta_api_key"])
	assert.Equal(t, "d-456", creds["delta"]["delta_secret"])
	assert.NotContains(t, creds, "empty", "providers with no resolvable keys are omitted")
}
