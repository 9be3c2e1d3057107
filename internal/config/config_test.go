package config_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wmcornejo/reView/internal/config"
)

// validConfig returns a Config that passes Validate() with all required
// fields set.
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	t.Parallel()
	cases := []int{0, -1, 65536, 100000}
	for _, p := range cases {
		p := p
		t.Run(fmt.Sprintf("port_%d", p), func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			cfg.Server.Port = p
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_InvalidServerMode(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Server.Mode = "production"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
}

func TestConfig_Validate_MissingProjectConfigDir(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Projects.ConfigDir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projects.config_dir")
}

func TestConfig_Validate_InvalidCacheBackend(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cache.Backend = "memcached"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.backend")
}

func TestConfig_Validate_MemoryCacheNeedsCapacity(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cache.Backend = "memory"
	cfg.Cache.MaxEntries = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.max_entries")
}

func TestConfig_Validate_RedisBackendNeedsAddr(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Addr = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.redis.addr")
}

func TestConfig_Validate_NegativeRedisDB(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.DB = -2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.redis.db")
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	s := config.ServerConfig{Host: "0.0.0.0", Port: 8050}
	assert.Equal(t, "0.0.0.0:8050", s.Addr())
}
