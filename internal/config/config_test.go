package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0644))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "start", cfg.Entry)
	assert.Equal(t, config.DriverFile, cfg.Store.Driver)
	assert.Equal(t, dir, cfg.GraphsDir())
	assert.Equal(t, filepath.Join(dir, ".colloquy", "profiles"), cfg.ProfilesDir())
}

func TestLoad_File(t *testing.T) {
	dir := write(t, `
graphs: dialogue
entry: tavern
max_skip_hops: 20
globals:
  gold: 5
  name: Ada
log:
  level: debug
  format: json
store:
  driver: redis
  redis:
    addr: cache:6379
    prefix: "game:"
    ttl: 24h
  redact: [password]
server:
  addr: ":9000"
`)
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dialogue"), cfg.GraphsDir())
	assert.Equal(t, "tavern", cfg.Entry)
	assert.Equal(t, 20, cfg.MaxSkipHops)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, []string{"password"}, cfg.Store.Redact)
	assert.True(t, cfg.Server.Metrics, "defaults survive partial blocks")

	snap, err := cfg.Defaults()
	require.NoError(t, err)
	assert.Equal(t, []domain.IntEntry{{Key: "gold", Value: 5}}, snap.Ints)
	assert.Equal(t, []domain.StringEntry{{Key: "name", Value: "Ada"}}, snap.Strings)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COLLOQUY_LOG_LEVEL", "error")
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	dir := write(t, `
store: {driver: postgres}
log: {level: loud}
globals: {ratio: 0.5}
`)
	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
	assert.Contains(t, err.Error(), "invalid log level")
	assert.Contains(t, err.Error(), "'ratio'")
}

func TestEncryptionKey(t *testing.T) {
	cfg := config.Default()
	key, err := cfg.EncryptionKey()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg.Store.EncryptionKeyEnv = "TEST_COLLOQUY_KEY"
	t.Setenv("TEST_COLLOQUY_KEY", "too-short")
	_, err = cfg.EncryptionKey()
	assert.Error(t, err)

	t.Setenv("TEST_COLLOQUY_KEY", "0123456789abcdef0123456789abcdef")
	key, err = cfg.EncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
