package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/wmcornejo/reView/internal/config"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
	"github.com/wmcornejo/reView/pkg/errors"
)

// NewRedisClient builds a go-redis client from the cache configuration.
// The connection is lazy; call Ping to verify it.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// Redis is the go-redis backed Cache, used when multiple service replicas
// should share one figure/dataset cache.
type Redis struct {
	client *redis.Client
	logger logging.Logger
	opts   options
	group  singleflight.Group
}

// NewRedis wraps an existing go-redis client.
func NewRedis(client *redis.Client, log logging.Logger, opts ...Option) *Redis {
	if log == nil {
		log = logging.NewNopLogger()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Redis{
		client: client,
		logger: log.Named("cache.redis"),
		opts:   o,
	}
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) error {
	data, found, err := r.fetch(ctx, key)
	if err != nil {
		return err
	}
	if !found || string(data) == nullMarker {
		return ErrMiss
	}
	if err := r.opts.serializer.Unmarshal(data, dest); err != nil {
		return ErrSerialization
	}
	return nil
}

// fetch reads the raw stored bytes, distinguishing "absent" from a stored
// null marker.
func (r *Redis) fetch(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.opts.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "cache: get failed")
	}
	return data, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := r.opts.serializer.Marshal(value)
	if err != nil {
		return ErrSerialization
	}
	if err := r.client.Set(ctx, r.opts.fullKey(key), data, r.opts.effectiveTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache: set failed")
	}
	return nil
}

// Delete implements Cache.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = r.opts.fullKey(k)
	}
	if err := r.client.Del(ctx, fullKeys...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache: delete failed")
	}
	return nil
}

// Exists implements Cache.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.opts.fullKey(key)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "cache: exists failed")
	}
	return n > 0, nil
}

// GetOrSet implements Cache.  A cached null marker reports ErrMiss without
// re-running the loader.
func (r *Redis) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader Loader) error {
	data, found, err := r.fetch(ctx, key)
	if err != nil {
		return err
	}
	if found {
		if string(data) == nullMarker {
			return ErrMiss
		}
		if err := r.opts.serializer.Unmarshal(data, dest); err != nil {
			return ErrSerialization
		}
		return nil
	}

	val, err, _ := r.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if v == nil {
			if nullErr := r.client.Set(ctx, r.opts.fullKey(key), nullMarker, r.opts.jitter(r.opts.nullTTL)).Err(); nullErr != nil {
				r.logger.Warn("null-marker write failed", logging.String("key", key), logging.Err(nullErr))
			}
			return nil, nil
		}
		if setErr := r.Set(ctx, key, v, ttl); setErr != nil {
			// The loaded value is still good; serve it and let the next
			// request retry the write.
			r.logger.Warn("cache write failed in GetOrSet", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if val == nil {
		return ErrMiss
	}

	data, err = r.opts.serializer.Marshal(val)
	if err != nil {
		return ErrSerialization
	}
	if err := r.opts.serializer.Unmarshal(data, dest); err != nil {
		return ErrSerialization
	}
	return nil
}

// Ping implements Cache.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache: redis unreachable")
	}
	return nil
}

// Close releases the underlying client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
