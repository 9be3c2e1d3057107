// Package mapview builds the geospatial scatter figures and titles served to
// the scenario dashboard.  Given a signal (scenario paths, plotted column,
// difference mode, recalculation overrides) and view options, it loads the
// scenario data, applies map/chart/click selections, resolves color-scale
// bounds, and emits a plotly-compatible figure plus a human-readable title.
package mapview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/domain/signal"
	"github.com/wmcornejo/reView/internal/infrastructure/cache"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/prometheus"
	"github.com/wmcornejo/reView/pkg/errors"
	"github.com/wmcornejo/reView/pkg/types/figure"
)

// defaultFrameCacheSize bounds the in-process map-data cache when no shared
// cache is injected.
const defaultFrameCacheSize = 64

// FrameLoader reads one scenario file into a Frame.
type FrameLoader interface {
	ReadFile(ctx context.Context, path string) (*dataset.Frame, error)
}

// Service is the application-level interface for map and title requests.
type Service interface {
	BuildMap(ctx context.Context, req *MapRequest) (*MapResult, error)
	BuildTitle(ctx context.Context, req *TitleRequest) (*TitleResult, error)
}

// MapRequest carries one map render request.
type MapRequest struct {
	Signal   signal.Signal `json:"signal"`
	Options  Options       `json:"options"`
	MapSel   *Selection    `json:"map_selection,omitempty"`
	ChartSel *Selection    `json:"chart_selection,omitempty"`
	ClickSel *Selection    `json:"click_selection,omitempty"`
}

// MapResult is the rendered figure plus the per-point capacity readout and
// the figure title.
type MapResult struct {
	Figure *figure.Figure     `json:"figure"`
	MapCap map[string]float64 `json:"mapcap"`
	Title  string             `json:"title"`
}

// TitleRequest carries one title-only request.
type TitleRequest struct {
	Signal   signal.Signal `json:"signal"`
	MapSel   *Selection    `json:"map_selection,omitempty"`
	ChartSel *Selection    `json:"chart_selection,omitempty"`
	ClickSel *Selection    `json:"click_selection,omitempty"`
}

// TitleResult is the composed title.
type TitleResult struct {
	Title string `json:"title"`
}

type serviceImpl struct {
	registry *project.Registry
	reader   FrameLoader
	cache    cache.Cache
	logger   logging.Logger
	metrics  *prometheus.AppMetrics
}

// NewService creates the map/title application service.  cache and metrics
// may be nil: a bounded in-process cache is used and metric recording is
// skipped.
func NewService(
	registry *project.Registry,
	reader FrameLoader,
	c cache.Cache,
	logger logging.Logger,
	metrics *prometheus.AppMetrics,
) Service {
	if c == nil {
		c = cache.NewMemory(defaultFrameCacheSize, cache.WithPrefix("mapview"))
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		registry: registry,
		reader:   reader,
		cache:    c,
		logger:   logger.Named("mapview"),
		metrics:  metrics,
	}
}

func (s *serviceImpl) BuildMap(ctx context.Context, req *MapRequest) (*MapResult, error) {
	start := time.Now()
	sig := &req.Signal
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.registry.Get(sig.Project)
	if err != nil {
		return nil, err
	}

	frame, err := s.mapData(ctx, cfg, sig)
	if err != nil {
		prometheus.RecordMapBuild(s.metrics, cfg.Name, time.Since(start), 0, err)
		return nil, err
	}

	var demand *dataset.Frame
	if demandAware(req.Options.MapFunction) {
		demand = cfg.DemandData(ctx)
	}

	builder, err := NewBuilder(sig, cfg, frame, demand, req.Options, req.MapSel, req.ChartSel, req.ClickSel)
	if err != nil {
		prometheus.RecordMapBuild(s.metrics, cfg.Name, time.Since(start), 0, err)
		return nil, err
	}

	fig, err := builder.Figure(ctx)
	if err != nil {
		prometheus.RecordMapBuild(s.metrics, cfg.Name, time.Since(start), 0, err)
		return nil, err
	}

	points := builder.PointCount()
	prometheus.RecordMapBuild(s.metrics, cfg.Name, time.Since(start), points, nil)
	s.logger.Debug("map build complete",
		logging.String("project", cfg.Name),
		logging.String("y", sig.Y),
		logging.Int("points", points),
		logging.Duration("elapsed", time.Since(start)),
	)

	return &MapResult{
		Figure: fig,
		MapCap: builder.MapCapacities(),
		Title:  builder.Title(),
	}, nil
}

func (s *serviceImpl) BuildTitle(ctx context.Context, req *TitleRequest) (*TitleResult, error) {
	sig := &req.Signal
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.registry.Get(sig.Project)
	if err != nil {
		return nil, err
	}
	frame, err := s.mapData(ctx, cfg, sig)
	if err != nil {
		return nil, err
	}
	filtered, err := applySelections(frame, req.ChartSel, req.MapSel, req.ClickSel)
	if err != nil {
		return nil, err
	}
	prometheus.RecordTitleBuild(s.metrics, cfg.Name)
	return &TitleResult{Title: BuildTitle(filtered, sig, cfg, req.MapSel, req.ChartSel)}, nil
}

// mapData returns the scenario frame for a signal, memoized by signal hash.
// Difference variables join both scenario files on sc_point_gid.  When the
// cache backend is down, the data is loaded directly.
func (s *serviceImpl) mapData(ctx context.Context, cfg *project.Config, sig *signal.Signal) (*dataset.Frame, error) {
	key := mapDataKey(sig)
	loaded := false
	var frame dataset.Frame
	err := s.cache.GetOrSet(ctx, key, &frame, 0, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return s.loadFrame(ctx, cfg, sig)
	})
	prometheus.RecordCacheAccess(s.metrics, "map_data", !loaded)
	if err != nil {
		if !isCacheFault(err) {
			return nil, err
		}
		s.logger.Warn("map data cache unavailable; loading directly",
			logging.String("key", key), logging.Err(err))
		return s.loadFrame(ctx, cfg, sig)
	}
	return &frame, nil
}

// isCacheFault classifies errors owned by the cache layer, as opposed to
// errors surfaced from the frame loader.
func isCacheFault(err error) bool {
	return err == cache.ErrMiss ||
		errors.IsCode(err, errors.ErrCodeCacheError) ||
		errors.IsCode(err, errors.ErrCodeSerialization)
}

func mapDataKey(sig *signal.Signal) string {
	sum := sha256.Sum256([]byte(sig.String()))
	return "map:data:" + hex.EncodeToString(sum[:])
}

func (s *serviceImpl) loadFrame(ctx context.Context, cfg *project.Config, sig *signal.Signal) (*dataset.Frame, error) {
	frame, err := s.readScenario(ctx, cfg, sig.Path)
	if err != nil {
		return nil, err
	}
	if !sig.IsDiff() {
		return frame, nil
	}
	other, err := s.readScenario(ctx, cfg, sig.Path2)
	if err != nil {
		return nil, err
	}
	return diffFrame(frame, other, sig.Y)
}

// readScenario resolves a signal path against the project directory and
// reads the file, recording read metrics.
func (s *serviceImpl) readScenario(ctx context.Context, cfg *project.Config, path string) (*dataset.Frame, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Directory, path)
	}
	start := time.Now()
	frame, err := s.reader.ReadFile(ctx, path)
	rows := 0
	if frame != nil {
		rows = frame.Len()
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	prometheus.RecordDatasetRead(s.metrics, format, time.Since(start), rows, err)
	if err != nil {
		s.logger.Error("scenario read failed", logging.String("path", path), logging.Err(err))
		return nil, err
	}
	return frame, nil
}
