package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
buffer:
  initial_capacity: 8192
  max_capacity: 1048576
  hysteresis_threshold: 6

network:
  prefer_ipv6: true
  connect_timeout: 10s
  dns_cache_size: 32
  dns_max_addresses: 4

cache:
  max_entry_size_bytes: 1048576
  max_total_size_bytes: 10485760

retry:
  max_attempts: 5
  initial_delay_ms: 100
  max_delay_ms: 5000
  backoff_multiplier: 1.5
  jitter_factor: 0.1
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8192, cfg.Buffer.InitialCapacity)
	assert.True(t, cfg.Network.PreferIPv6)
	assert.Equal(t, 10*time.Second, cfg.Network.ConnectTimeout)
	assert.Equal(t, 32, cfg.Network.DNSCacheSize)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1.5, cfg.Retry.BackoffMultiplier)
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
buffer:
  initial_capacity: 4096
  max_capacity: 1048576
  hysteresis_threshold: 4
network:
  connect_timeout: 30s
cache:
  max_entry_size_bytes: 1048576
  max_total_size_bytes: 10485760
retry:
  max_attempts: 3
  initial_delay_ms: 200
  max_delay_ms: 10000
  backoff_multiplier: 2.0
  jitter_factor: 0.2
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("QUYC_RETRY_MAX_ATTEMPTS", "7")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// max_delay_ms below initial_delay_ms violates the spec's
	// initial_delay_ms <= max_delay_ms invariant.
	yamlContent := `
buffer:
  initial_capacity: 4096
  max_capacity: 1048576
  hysteresis_threshold: 4
network:
  connect_timeout: 30s
cache:
  max_entry_size_bytes: 1048576
  max_total_size_bytes: 10485760
retry:
  max_attempts: 3
  initial_delay_ms: 5000
  max_delay_ms: 1000
  backoff_multiplier: 2.0
  jitter_factor: 0.2
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	_, err = Load(configPath)
	assert.Error(t, err)
}
