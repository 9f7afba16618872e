package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/calmora-cli/internal/session"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("CALMORA_CONFIG_DIR", filepath.Join(dir, ".calmora"))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Zero(t, cfg.Timeout)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, filepath.Join(dir, ".calmora", "config.yaml"), cfg.Path())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "calmora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://api.calmora.example/
timeout: 15s
session:
  backend: redis
  redis_url: redis://localhost:6379/2
  redis_key: team:token
  ttl: 24h
logging:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.calmora.example", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Session.RedisURL)
	assert.Equal(t, "team:token", cfg.Session.RedisKey)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "calmora.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://from-file:8000\n"), 0o600))

	t.Setenv("CALMORA_BASE_URL", "http://from-env:9000")
	t.Setenv("CALMORA_TIMEOUT", "3s")
	t.Setenv("CALMORA_SESSION", "memory")
	t.Setenv("CALMORA_LOG_LEVEL", "info")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:9000", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [unterminated\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "typo.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
	assert.ErrorContains(t, err, "typo.yaml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"https", func(c *Config) { c.BaseURL = "https://calmora.example" }, ""},
		{"relative url", func(c *Config) { c.BaseURL = "/api" }, "invalid base_url"},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://calmora.example" }, "invalid base_url"},
		{"empty url", func(c *Config) { c.BaseURL = "" }, "invalid base_url"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "invalid timeout"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "sqlite" }, `unknown session backend "sqlite"`},
		{"redis without url", func(c *Config) { c.Session.Backend = BackendRedis }, "session.redis_url is required"},
		{"memory", func(c *Config) { c.Session.Backend = BackendMemory }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOpenSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		dir := isolate(t)
		cfg := Default()
		cfg.Session.Path = filepath.Join(dir, "tok.yaml")

		store, closeFn, err := cfg.OpenSessionStore()
		require.NoError(t, err)
		defer closeFn()

		fs, ok := store.(*session.FileStore)
		require.True(t, ok)
		assert.Equal(t, cfg.Session.Path, fs.Path())
	})

	t.Run("file default path", func(t *testing.T) {
		dir := isolate(t)
		store, _, err := Default().OpenSessionStore()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ".calmora", "session.yaml"), store.(*session.FileStore).Path())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := Default()
		cfg.Session.Backend = BackendRedis
		cfg.Session.RedisURL = "redis://" + mr.Addr()
		cfg.Session.RedisKey = "cfg:token"

		store, closeFn, err := cfg.OpenSessionStore()
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, store.Set(ctx, "abc"))
		got, err := mr.Get("cfg:token")
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("memory", func(t *testing.T) {
		cfg := Default()
		cfg.Session.Backend = BackendMemory
		store, _, err := cfg.OpenSessionStore()
		require.NoError(t, err)
		_, err = store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrNoToken)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := Default()
		cfg.Session.Backend = "etcd"
		_, closeFn, err := cfg.OpenSessionStore()
		assert.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}
