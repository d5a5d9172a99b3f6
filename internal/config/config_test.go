package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "APP_NAME", "LOG_LEVEL", "LOG_FORMAT", "STORAGE_DRIVER", "DB_DSN",
		"SQLITE_PATH", "AUTH_ENABLED", "AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_JWKS_URL",
		"AUTH_USERINFO_URL", "PAGE_SIZE", "READ_TIMEOUT", "WRITE_TIMEOUT",
	} {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { _ = os.Setenv(k, v) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.DevHeaderAllowed())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
port: "9000"
env: "staging"
storage:
  driver: "sqlite"
  sqlite_path: "/tmp/x.db"
auth:
  enabled: true
  jwks_url: "https://tenant.auth0.com/.well-known/jwks.json"
page_size: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 10, cfg.PageSize)
	assert.True(t, cfg.Auth.Enabled)
	assert.False(t, cfg.DevHeaderAllowed())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without dsn", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"auth without jwks", map[string]string{"AUTH_ENABLED": "true"}},
		{"zero page size", map[string]string{"PAGE_SIZE": "0"}},
		{"production without auth", map[string]string{"APP_ENV": "production"}},
		{"staging with auth off", map[string]string{"APP_ENV": "staging", "AUTH_ENABLED": "false"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_DerivesJWKSFromIssuer(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_ISSUER", "https://tenant.auth0.com/")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://tenant.auth0.com/.well-known/jwks.json", cfg.Auth.JWKSURL)
}

func TestLoad_DevHeaderOnlyLocal(t *testing.T) {
	for _, env := range []string{"local", "test"} {
		t.Run(env, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", env)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.True(t, cfg.DevHeaderAllowed())
		})
	}

	t.Run("production", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("AUTH_ENABLED", "true")
		t.Setenv("AUTH_JWKS_URL", "https://tenant.auth0.com/.well-known/jwks.json")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.False(t, cfg.DevHeaderAllowed())
	})
}
