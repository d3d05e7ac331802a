package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/careerdesk.db", cfg.Database.Path)
	assert.Equal(t, 60*24, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.True(t, cfg.Reconciler.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Reconciler.Interval)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Payment.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CAREERDESK_SERVER_ADDR", ":9090")
	t.Setenv("CAREERDESK_AUTH_JWTSECRET", "0123456789abcdef0123")
	t.Setenv("CAREERDESK_RECONCILER_INTERVAL", "30s")
	t.Setenv("CAREERDESK_DATABASE_DRIVER", "postgres")
	t.Setenv("CAREERDESK_DATABASE_DSN", "host=localhost user=app")
	t.Setenv("CAREERDESK_SERVER_ALLOWEDORIGINS", "https://careerdesk.example, ,https://admin.careerdesk.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "0123456789abcdef0123", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Second, cfg.Reconciler.Interval)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, []string{"https://careerdesk.example", "https://admin.careerdesk.example"}, cfg.Server.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CAREERDESK_LOG_LEVEL=debug\nCAREERDESK_SERVER_ADDR=:1111\n"), 0o600))
	t.Setenv("CAREERDESK_SERVER_ADDR", ":2222")
	t.Cleanup(func() { _ = os.Unsetenv("CAREERDESK_LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":2222", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := "payment:\n  baseurl: https://api.uat.payglocal.in\n  merchantid: merchant-1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.uat.payglocal.in", cfg.Payment.BaseURL)
	assert.Equal(t, "merchant-1", cfg.Payment.MerchantID)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		chdirTemp(t)
		cfg, err := Load()
		require.NoError(t, err)
		cfg.Auth.JWTSecret = "a-very-long-secret-value"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwtsecret"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "driver"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, wantErr: "dsn"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
