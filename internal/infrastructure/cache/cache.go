// Package cache provides the dataset/figure cache used by the map service:
// a small Cache interface with an in-process LRU backend (default) and a
// Redis backend (config-selected).  Values are JSON-serialized; nil loader
// results are cached with a null marker so missing files are not re-read on
// every request.
package cache

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/wmcornejo/reView/internal/config"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
	"github.com/wmcornejo/reView/pkg/errors"
)

// ErrMiss is returned by Get (and GetOrSet for null-cached keys) when the
// key holds no usable value.
var ErrMiss = errors.New(errors.ErrCodeNotFound, "cache miss")

// ErrSerialization is returned when a value cannot be (de)serialized.
var ErrSerialization = errors.New(errors.ErrCodeSerialization, "cache serialization failed")

// nullMarker is stored in place of a value when a loader legitimately
// returns nil, so the absence itself is cached.
const nullMarker = "__null__"

// Loader produces the value for a key on a cache miss.  Returning (nil, nil)
// means "nothing there" and is cached as a null marker.
type Loader func(ctx context.Context) (interface{}, error)

// Cache is the storage-agnostic cache contract.
type Cache interface {
	// Get unmarshals the cached value into dest; ErrMiss when absent.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores value under key with the given TTL (0 = backend default).
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present (null markers count as present).
	Exists(ctx context.Context, key string) (bool, error)

	// GetOrSet returns the cached value or runs loader exactly once per key
	// across concurrent callers, caching the result.  A nil loader result is
	// null-cached and reported as ErrMiss.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader Loader) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Serialization
// ─────────────────────────────────────────────────────────────────────────────

// Serializer converts values to and from their stored byte form.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonSerializer struct{}

func (jsonSerializer) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonSerializer) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// ─────────────────────────────────────────────────────────────────────────────
// Options
// ─────────────────────────────────────────────────────────────────────────────

type options struct {
	prefix     string
	defaultTTL time.Duration
	nullTTL    time.Duration
	serializer Serializer
	jitter     func(time.Duration) time.Duration
}

// Option tunes a cache backend.
type Option func(*options)

// WithPrefix namespaces every key; a trailing ":" is added when missing.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" && !strings.HasSuffix(prefix, ":") {
			prefix += ":"
		}
		o.prefix = prefix
	}
}

// WithDefaultTTL sets the TTL used when Set/GetOrSet receive 0.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) { o.defaultTTL = ttl }
}

// WithNullTTL sets how long null markers live.
func WithNullTTL(ttl time.Duration) Option {
	return func(o *options) { o.nullTTL = ttl }
}

// WithSerializer replaces the JSON serializer.
func WithSerializer(s Serializer) Option {
	return func(o *options) { o.serializer = s }
}

// WithJitter replaces the TTL jitter function; tests pass the identity
// function to make expirations deterministic.
func WithJitter(f func(time.Duration) time.Duration) Option {
	return func(o *options) { o.jitter = f }
}

func defaultOptions() options {
	return options{
		prefix:     "review:",
		defaultTTL: 15 * time.Minute,
		nullTTL:    30 * time.Second,
		serializer: jsonSerializer{},
		jitter:     jitterTTL,
	}
}

func (o options) fullKey(key string) string {
	return o.prefix + key
}

// effectiveTTL resolves a caller TTL against the default and applies jitter.
func (o options) effectiveTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = o.defaultTTL
	}
	return o.jitter(ttl)
}

// jitterTTL spreads expirations by +/- 10% so hot keys loaded together do
// not all expire together.
func jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

// ─────────────────────────────────────────────────────────────────────────────
// Factory
// ─────────────────────────────────────────────────────────────────────────────

// New builds the cache backend selected by cfg.
func New(cfg config.CacheConfig, log logging.Logger) (Cache, error) {
	opts := []Option{
		WithPrefix(cfg.KeyPrefix),
		WithDefaultTTL(cfg.DefaultTTL),
	}
	switch cfg.Backend {
	case "memory", "":
		return NewMemory(cfg.MaxEntries, opts...), nil
	case "redis":
		return NewRedis(NewRedisClient(cfg.Redis), log, opts...), nil
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "cache: unknown backend %q", cfg.Backend)
	}
}
