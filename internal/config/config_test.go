// Package config tests configuration loading and validation.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

// TestLoadAppliesDefaults checks a minimal config gets defaults filled in.
func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
crawler:
  base_url: "https://news.example.com/section"
redis:
  addr: "localhost:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 10, cfg.Crawler.FetchTimeoutSec)
	require.Equal(t, 8, cfg.Crawler.RecencyHours)
	require.Equal(t, 10, cfg.Crawler.MaxLoadMore)
	require.Equal(t, "Asia/Seoul", cfg.Crawler.Timezone)
	require.Equal(t, "@every 8h", cfg.Schedule.Spec)
	require.Equal(t, "Asia/Seoul", cfg.Location().String())
}

// TestLoadRejectsMissingBaseURL ensures the base listing URL is required.
func TestLoadRejectsMissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
redis:
  addr: "localhost:6379"
`)

	_, err := Load(path)
	require.ErrorContains(t, err, "crawler.base_url")
}

// TestLoadRejectsMissingRedisAddr ensures the cache address is required.
func TestLoadRejectsMissingRedisAddr(t *testing.T) {
	path := writeConfig(t, `
crawler:
  base_url: "https://news.example.com/section"
`)

	_, err := Load(path)
	require.ErrorContains(t, err, "redis.addr")
}

// TestValidateRejectsBadTimezone ensures unknown zones fail validation.
func TestValidateRejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, `
crawler:
  base_url: "https://news.example.com/section"
  timezone: "Mars/Olympus"
redis:
  addr: "localhost:6379"
`)

	_, err := Load(path)
	require.ErrorContains(t, err, "crawler.timezone")
}

// TestDurationHelpers checks the duration conversion helpers.
func TestDurationHelpers(t *testing.T) {
	path := writeConfig(t, `
crawler:
  base_url: "https://news.example.com/section"
  fetch_timeout_seconds: 10
  recency_hours: 8
  settle_ms: 1000
redis:
  addr: "localhost:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "10s", cfg.FetchTimeout().String())
	require.Equal(t, "8h0m0s", cfg.RecencyWindow().String())
	require.Equal(t, "1s", cfg.SettleDelay().String())
}
