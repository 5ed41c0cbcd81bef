// Package config handles loading and validating quyc client configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for a quyc client: buffer
// sizing, network/transport tunables, and security posture. Every
// field maps to an ambient concern named in spec §4.5/§4.7/§4.8, laid
// out as a koanf-tagged struct in the same shape the teacher's gateway
// config used for its server/provider tree.
type Config struct {
	Buffer  BufferConfig  `koanf:"buffer" validate:"required"`
	Network NetworkConfig `koanf:"network" validate:"required"`
	Cache   CacheConfig   `koanf:"cache" validate:"required"`
	Retry   RetryConfig   `koanf:"retry" validate:"required"`
	Trust   TrustConfig   `koanf:"trust"`
}

// BufferConfig tunes the streaming buffer's capacity manager (spec §4.5).
type BufferConfig struct {
	InitialCapacity     int `koanf:"initial_capacity" validate:"gt=0"`
	MaxCapacity         int `koanf:"max_capacity" validate:"gtefield=InitialCapacity"`
	HysteresisThreshold int `koanf:"hysteresis_threshold" validate:"gte=1"`
}

// NetworkConfig tunes connection establishment (spec §4.7).
type NetworkConfig struct {
	PreferIPv6         bool          `koanf:"prefer_ipv6"`
	HappyEyeballsDelay time.Duration `koanf:"happy_eyeballs_delay" validate:"gte=0"`
	ConnectTimeout     time.Duration `koanf:"connect_timeout" validate:"gt=0"`
	DNSCacheSize       int           `koanf:"dns_cache_size" validate:"gt=0,lte=64"`
	DNSMaxAddresses    int           `koanf:"dns_max_addresses" validate:"gt=0,lte=8"`
	ProxyURL           string        `koanf:"proxy_url" validate:"omitempty,url"`
	NoProxy            []string      `koanf:"no_proxy"`
}

// CacheConfig tunes the response cache (spec §4.9).
type CacheConfig struct {
	MaxEntrySizeBytes int64 `koanf:"max_entry_size_bytes" validate:"gt=0"`
	MaxTotalSizeBytes int64 `koanf:"max_total_size_bytes" validate:"gtefield=MaxEntrySizeBytes"`
	RedisAddr         string `koanf:"redis_addr"`
}

// RetryConfig tunes backoff (spec §4.10); validated with the same
// constraints the spec states as invariants.
type RetryConfig struct {
	MaxAttempts       int     `koanf:"max_attempts" validate:"gte=1"`
	InitialDelayMs    int64   `koanf:"initial_delay_ms" validate:"gte=0"`
	MaxDelayMs        int64   `koanf:"max_delay_ms" validate:"gtefield=InitialDelayMs"`
	BackoffMultiplier float64 `koanf:"backoff_multiplier" validate:"gt=0"`
	JitterFactor      float64 `koanf:"jitter_factor" validate:"gte=0,lte=1"`
}

// TrustConfig controls encrypted private-key material handling (spec's
// supplemented internal/trust component).
type TrustConfig struct {
	KeyStorePath string `koanf:"key_store_path"`
}

// Default returns the recommended configuration, matching the spec's
// stated defaults (300ms happy-eyeballs delay, 30s connect timeout, 64
// DNS cache entries, 8 DNS addresses, 50 MiB cache admission cap, etc).
func Default() Config {
	return Config{
		Buffer: BufferConfig{
			InitialCapacity:     4096,
			MaxCapacity:         4 << 20,
			HysteresisThreshold: 4,
		},
		Network: NetworkConfig{
			HappyEyeballsDelay: 300 * time.Millisecond,
			ConnectTimeout:     30 * time.Second,
			DNSCacheSize:       64,
			DNSMaxAddresses:    8,
		},
		Cache: CacheConfig{
			MaxEntrySizeBytes: 50 << 20,
			MaxTotalSizeBytes: 512 << 20,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialDelayMs:    200,
			MaxDelayMs:        10_000,
			BackoffMultiplier: 2.0,
			JitterFactor:      0.2,
		},
	}
}

var validate = validator.New()

// Load reads configuration from a YAML file, layers QUYC_-prefixed
// environment variable overrides on top, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := k.Load(env.Provider("QUYC_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "QUYC_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Network.ProxyURL == "" {
		cfg.Network.ProxyURL = os.Getenv("HTTPS_PROXY")
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
