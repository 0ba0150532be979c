package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("CLAIMS_JWT_SECRET", "from-env")
	t.Setenv("CLAIMS_DOCUMENTS_DIR", "/srv/documents")
	t.Setenv("CLAIMS_SERVER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "/srv/documents", cfg.Storage.DocumentsDir)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "data/claims.db", cfg.Database.Path)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 8181
  read_timeout: 5s
database:
  path: /var/lib/claims/claims.db
auth:
  jwt_secret: from-file
  token_ttl: 1h
report:
  institution: Northbridge College
logger:
  format: console
`)
	t.Setenv("CLAIMS_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("CLAIMS_JWT_SECRET", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "Northbridge College", cfg.Report.Institution)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("CLAIMS_JWT_SECRET", "")
	t.Setenv("CLAIMS_AUTH_JWT_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load("")
	assert.ErrorContains(t, err, "auth.jwt_secret")
}

func TestLoad_RejectsNegativeGracePeriod(t *testing.T) {
	t.Setenv("CLAIMS_JWT_SECRET", "secret")
	t.Setenv("CLAIMS_STORAGE_ORPHAN_GRACE_PERIOD", "-1h")

	_, err := Load("")
	assert.ErrorContains(t, err, "storage.orphan_grace_period")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, MaxUploadBytes: 1024},
			Database: DatabaseConfig{Path: "claims.db"},
			Storage:  StorageConfig{DocumentsDir: "documents"},
			Auth:     AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour},
			Logger:   LoggerConfig{Format: "json"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"no upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"no database path", func(c *Config) { c.Database.Path = "" }},
		{"no documents dir", func(c *Config) { c.Storage.DocumentsDir = "" }},
		{"no secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"no token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"unknown log format", func(c *Config) { c.Logger.Format = "xml" }},
		{"negative sweep interval", func(c *Config) { c.Storage.SweepInterval = -time.Minute }},
		{"sweeping without grace period", func(c *Config) {
			c.Storage.SweepInterval = time.Hour
			c.Storage.OrphanGracePeriod = 0
		}},
		{"sweeping with negative grace period", func(c *Config) {
			c.Storage.SweepInterval = time.Hour
			c.Storage.OrphanGracePeriod = -time.Hour
		}},
	}

	require.NoError(t, valid().Validate())

	// Grace period only matters while the sweeper runs
	disabled := valid()
	disabled.Storage.OrphanGracePeriod = 0
	require.NoError(t, disabled.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "CLAIMS_TEST_DOTENV=loaded\n")
	t.Setenv("CLAIMS_TEST_DOTENV", "")
	os.Unsetenv("CLAIMS_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, "loaded", os.Getenv("CLAIMS_TEST_DOTENV"))
}

func TestToContainerConfig(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080, MaxUploadBytes: 2048},
		Database: DatabaseConfig{Path: "claims.db", MaxOpenConns: 4},
		Storage:  StorageConfig{DocumentsDir: "documents", SweepInterval: time.Minute, OrphanGracePeriod: time.Hour},
		Auth:     AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour, Issuer: "claims"},
		Report:   ReportConfig{Institution: "Northbridge"},
		Logger:   LoggerConfig{Level: "debug", Format: "console"},
	}

	cc := cfg.ToContainerConfig()
	assert.Equal(t, "claims.db", cc.Database.Path)
	assert.Equal(t, 4, cc.Database.MaxOpenConns)
	assert.Equal(t, time.Minute, cc.Storage.SweepInterval)
	assert.Equal(t, time.Hour, cc.Storage.OrphanGracePeriod)
	assert.Equal(t, int64(2048), cc.Server.MaxUploadBytes)
	assert.Equal(t, "claims", cc.Auth.Issuer)
	assert.Equal(t, "Northbridge", cc.Report.Institution)
	require.NoError(t, cc.Validate())

	lc := cfg.ToLoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "console", lc.Format)
}
