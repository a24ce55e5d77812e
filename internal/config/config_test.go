package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
env: dev
local:
  log:
    level: debug
dev:
  http:
    timeout_seconds: 5
  cache:
    backend: redis
    redis:
      addr: redis:6379
      ttl_hours: 12
  favorites: [netto, lidl]
  dealers:
    - key: lidl
      id: abc12
      name: Lidl
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSelectsProfile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, []string{"netto", "lidl"}, cfg.Favorites)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	d, ok := reg.Lookup("lidl")
	require.True(t, ok)
	assert.Equal(t, "abc12", d.ID)
}

func TestDefaults(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "https://squid-api.tjek.com/v2", cfg.Tjek.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout())
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.RefreshInterval())
	assert.Equal(t, []string{"rema1000", "netto"}, cfg.Favorites)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TILBUD_ENV", "local")
	t.Setenv("TILBUD_CACHE_DIR", "/var/cache/tilbud")
	t.Setenv("TILBUD_HTTP_TIMEOUT_SECONDS", "3")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/cache/tilbud", cfg.Cache.Dir)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
}

func TestUnknownEnv(t *testing.T) {
	_, err := Load(writeConfig(t, "env: staging\n"))
	assert.Error(t, err)
}

func TestUnknownCacheBackend(t *testing.T) {
	_, err := Load(writeConfig(t, "local:\n  cache:\n    backend: memcached\n"))
	assert.Error(t, err)
}

func TestBadDealer(t *testing.T) {
	cfg, err := Load(writeConfig(t, "local:\n  dealers:\n    - key: x\n"))
	require.NoError(t, err)
	_, err = cfg.Registry()
	assert.Error(t, err)
}
