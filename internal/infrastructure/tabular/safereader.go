package tabular

import (
	"context"
	"time"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/internal/infrastructure/cache"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
)

// safeReaderCapacity bounds the auxiliary-table cache; demand and
// variable-options files are small and few.
const safeReaderCapacity = 16

// SafeReader is a cached, error-swallowing reader for auxiliary project
// tables (demand data, variable options).  Read failures are cached as
// negative results so a missing file is not re-probed on every request.
type SafeReader struct {
	cache  cache.Cache
	logger logging.Logger
}

// NewSafeReader wraps a cache; pass nil to use a private in-process LRU.
func NewSafeReader(c cache.Cache, log logging.Logger) *SafeReader {
	if c == nil {
		c = cache.NewMemory(safeReaderCapacity,
			cache.WithPrefix("tabular"),
			cache.WithDefaultTTL(time.Hour),
		)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SafeReader{cache: c, logger: log.Named("tabular.safereader")}
}

// SafeRead returns (nil, false) instead of an error when the file is
// missing or unreadable.
func (r *SafeReader) SafeRead(ctx context.Context, path string) (*dataset.Frame, bool) {
	if path == "" {
		return nil, false
	}
	var frame dataset.Frame
	err := r.cache.GetOrSet(ctx, path, &frame, 0, func(ctx context.Context) (interface{}, error) {
		f, readErr := ReadFile(ctx, path)
		if readErr != nil {
			r.logger.Debug("safe read failed",
				logging.String("path", path), logging.Err(readErr))
			return nil, nil // cache the absence
		}
		return f, nil
	})
	if err != nil {
		return nil, false
	}
	return &frame, true
}

// ReadHeader returns column names; headers are cheap enough to skip the
// cache.
func (r *SafeReader) ReadHeader(ctx context.Context, path string) ([]string, error) {
	return ReadHeader(ctx, path)
}
