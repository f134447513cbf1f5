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
	for _, k := range []string{"CART_HTTP_ADDR", "CART_STORAGE_DRIVER", "CART_DB_DSN", "CART_SQLITE_PATH",
		"RABBITMQ_URL", "CART_EVENTS_ENABLED", "CART_CORS_ALLOW_ORIGINS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
storage:
  driver: postgres
  dsn: postgres://cart@localhost/carts
log:
  format: console
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("CART_HTTP_ADDR", ":7000")
	t.Setenv("CART_STORAGE_DRIVER", "postgres")
	t.Setenv("CART_DB_DSN", "postgres://env")
	t.Setenv("CART_EVENTS_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CART_CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "postgres://env", cfg.Storage.DSN)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowOrigins)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http: ["), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad bool", func(t *testing.T) {
		t.Setenv("CART_EVENTS_ENABLED", "maybe")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"unknown driver":       func(c *Config) { c.Storage.Driver = "mongo" },
		"postgres without dsn": func(c *Config) { c.Storage.Driver = DriverPostgres },
		"sqlite without path":  func(c *Config) { c.Storage.SQLitePath = "" },
		"events without url":   func(c *Config) { c.Events.Enabled = true; c.Events.RabbitMQURL = "" },
		"bad log format":       func(c *Config) { c.Log.Format = "xml" },
		"empty addr":           func(c *Config) { c.HTTP.Addr = " " },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
