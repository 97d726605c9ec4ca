package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/internal/config"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", config.WithEnvFile(""), config.WithLookupEnv(noEnv))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.False(t, cfg.UsesRedis())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "abacus.yaml", `
history: loam
history_dir: /tmp/hist
history_limit: 25
store: redis
redis:
  addr: redis:6379
  db: 2
  ttl: 90m
http:
  port: 9090
metrics: true
`)
	cfg, err := config.Load(path, config.WithEnvFile(""), config.WithLookupEnv(noEnv))
	require.NoError(t, err)

	assert.Equal(t, "loam", cfg.History)
	assert.Equal(t, "/tmp/hist", cfg.HistoryDir)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, "redis", cfg.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "abacus:", cfg.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Metrics)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "abacus.yaml", "history: loam\nhttp:\n  port: 9090\n")
	env := envMap(map[string]string{
		"ABACUS_HISTORY":   "redis",
		"ABACUS_HTTP_PORT": "7070",
		"ABACUS_DEBUG":     "true",
		"ABACUS_REDIS_TTL": "1h",
	})

	cfg, err := config.Load(path, config.WithEnvFile(""), config.WithLookupEnv(env))
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.History)
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "ABACUS_STORE=file\nABACUS_STORE_DIR=/data/sessions\nABACUS_METRICS=1\n")

	cfg, err := config.Load("", config.WithEnvFile(envFile), config.WithLookupEnv(envMap(map[string]string{
		"ABACUS_STORE_DIR": "/override",
	})))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, "/override", cfg.StoreDir, "process env wins over .env")
	assert.True(t, cfg.Metrics)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	_, err := config.Load("", config.WithEnvFile(filepath.Join(t.TempDir(), ".env")), config.WithLookupEnv(noEnv))
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), config.WithEnvFile(""), config.WithLookupEnv(noEnv))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "history: [unclosed")
		_, err := config.Load(path, config.WithEnvFile(""), config.WithLookupEnv(noEnv))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "typo.yaml", "histroy: loam\n")
		_, err := config.Load(path, config.WithEnvFile(""), config.WithLookupEnv(noEnv))
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.Load("", config.WithEnvFile(""), config.WithLookupEnv(envMap(map[string]string{
			"ABACUS_HISTORY": "sqlite",
		})))
		assert.ErrorContains(t, err, "sqlite")
	})

	t.Run("bad port", func(t *testing.T) {
		_, err := config.Load("", config.WithEnvFile(""), config.WithLookupEnv(envMap(map[string]string{
			"ABACUS_HTTP_PORT": "0",
		})))
		assert.ErrorContains(t, err, "port")
	})
}

func TestLoad_StoreKeys(t *testing.T) {
	cfg, err := config.Load("", config.WithEnvFile(""), config.WithLookupEnv(envMap(map[string]string{
		"ABACUS_STORE_KEY":      "new",
		"ABACUS_STORE_OLD_KEYS": "old1,old2",
	})))
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.StoreKey)
	assert.Equal(t, []string{"old1", "old2"}, cfg.StoreOldKeys)
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Password = "hunter2"
	cfg.StoreKey = "c2VjcmV0"
	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "c2VjcmV0")
	assert.Contains(t, out, "history: memory")
}
