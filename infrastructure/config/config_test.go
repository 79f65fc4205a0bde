package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "https://blog.gangagames.com", cfg.Domain)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.EnableCORS)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SITE_DOMAIN", "https://staging.gangagames.com/")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("STATIC_PAGES", "about, faq ,responsible-gaming")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Trailing slash is stripped so canonical URL joins stay clean.
	assert.Equal(t, "https://staging.gangagames.com", cfg.Domain)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"about", "faq", "responsible-gaming"}, cfg.StaticPages)
}

func TestValidate_DomainRequiresScheme(t *testing.T) {
	t.Setenv("SITE_DOMAIN", "blog.gangagames.com")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate_ProductionRequiresStores(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SUPABASE_URL", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadTunables(t *testing.T) {
	path := writeTunables(t, `
cache:
  ttl: 10m
resolver:
  batchSize: 25
metadata:
  version: "3"
`)

	tunables, err := LoadTunables(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, tunables.Cache.TTL)
	assert.Equal(t, 25, tunables.Resolver.BatchSize)
	// Untouched fields keep their defaults.
	assert.Equal(t, 4*time.Hour, tunables.Resolver.ArtifactMaxAge)
	assert.Equal(t, "3", tunables.Metadata.Version)
}

func TestLoadTunables_RejectsInvalidValues(t *testing.T) {
	path := writeTunables(t, `
cache:
  ttl: -1s
`)

	_, err := LoadTunables(path)
	assert.Error(t, err)
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	path := writeTunables(t, "cache:\n  ttl: 10m\n")
	logger := zap.NewNop()

	w, err := NewWatcher(path, logger)
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *Tunables, 1)
	w.OnChange(func(tun *Tunables) { changed <- tun })

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: 2m\n"), 0o644))

	select {
	case tun := <-changed:
		assert.Equal(t, 2*time.Minute, tun.Cache.TTL)
		assert.Equal(t, 2*time.Minute, w.Current().Cache.TTL)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not observe the write")
	}
}

func TestWatcher_BadEditKeepsLastGoodSnapshot(t *testing.T) {
	path := writeTunables(t, "cache:\n  ttl: 10m\n")
	logger := zap.NewNop()

	w, err := NewWatcher(path, logger)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: -5m\n"), 0o644))

	// Give the debounce window time to fire, then confirm nothing changed.
	time.Sleep(700 * time.Millisecond)
	assert.Equal(t, 10*time.Minute, w.Current().Cache.TTL)
}

func writeTunables(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tunables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
