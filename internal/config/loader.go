// Package config provides configuration loading, defaults, and validation for
// the reView map service.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "REVIEW"

// configKeys lists every recognised configuration key.  Binding them
// explicitly lets REVIEW_* variables populate a Config even when no file is
// loaded — AutomaticEnv alone only resolves keys viper has already seen.
var configKeys = []string{
	"server.host",
	"server.port",
	"server.mode",
	"server.read_timeout",
	"server.write_timeout",
	"server.max_body_size",
	"server.shutdown_timeout",
	"server.cors_origins",
	"projects.config_dir",
	"projects.data_dir",
	"projects.watch",
	"cache.backend",
	"cache.key_prefix",
	"cache.default_ttl",
	"cache.max_entries",
	"cache.redis.addr",
	"cache.redis.password",
	"cache.redis.db",
	"cache.redis.pool_size",
	"cache.redis.min_idle_conns",
	"cache.redis.dial_timeout",
	"cache.redis.read_timeout",
	"cache.redis.write_timeout",
	"log.level",
	"log.format",
	"log.output_paths",
	"log.error_output_paths",
	"metrics.enabled",
	"metrics.namespace",
}

// newViper builds a pre-configured Viper instance with the service's standard
// settings: YAML file type, REVIEW_ env prefix, automatic env binding, and a
// key replacer that maps "." → "_" so that nested keys like "cache.backend"
// resolve to "REVIEW_CACHE_BACKEND".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	// Boolean defaults cannot be expressed in ApplyDefaults (false is the zero
	// value), so they live here.
	v.SetDefault("metrics.enabled", true)
	return v
}

// Load reads the YAML file at configPath, merges any REVIEW_* environment
// variable overrides, applies service defaults for unset fields, and
// validates the result.  It returns a fully-populated *Config or a
// descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from REVIEW_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised (12-factor) deployments.
//
// Environment variable naming convention:
//
//	REVIEW_<SECTION>_<FIELD>   e.g.  REVIEW_SERVER_PORT, REVIEW_CACHE_BACKEND
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file — rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as the log level; callers are
// responsible for applying only the safe subset of changes at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// If the changed file fails to parse or validate, onChange is not called and
// the bad revision is skipped.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read — errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			// Config change produced an invalid config; skip the callback to
			// prevent the application from entering a broken state.
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
