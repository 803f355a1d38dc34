package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-test-secret-that-is-long-enough")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, time.Minute, cfg.Redis.StatsTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-test-secret-that-is-long-enough")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Redis.Enabled)
	assert.Contains(t, cfg.Database.GetDSN(), "host=db.internal")
}

func TestLoad_RejectsDefaultSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite3", Path: "todo.db"},
			JWT:      JWTConfig{Secret: "secret", ExpiresIn: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unsupported database driver"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "path or dsn"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server port"},
		{name: "zero expiry", mutate: func(c *Config) { c.JWT.ExpiresIn = 0 }, wantErr: "expiry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: "sqlite3", Path: "data/todo.db"}
	assert.Equal(t, "file:data/todo.db?_foreign_keys=on&_busy_timeout=5000", sqlite.GetDSN())

	explicit := DatabaseConfig{Driver: "sqlite3", DSN: "file::memory:"}
	assert.Equal(t, "file::memory:", explicit.GetDSN())
}
