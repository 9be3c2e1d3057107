package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the map service records.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec   // method, path, status_code
	HTTPRequestDuration HistogramVec // method, path
	HTTPResponseSize    HistogramVec // method, path
	HTTPActiveRequests  GaugeVec     // method

	// Map layer
	MapBuildsTotal   CounterVec   // project, status
	MapBuildDuration HistogramVec // project
	MapPointsPlotted HistogramVec // project
	TitleBuildsTotal CounterVec   // project

	// Dataset layer
	DatasetReadsTotal   CounterVec   // format, status
	DatasetReadDuration HistogramVec // format
	DatasetRowsRead     HistogramVec // format

	// Project registry
	ProjectsLoaded      GaugeVec   // (no labels)
	ProjectReloadsTotal CounterVec // trigger

	// Cache
	CacheHitsTotal   CounterVec // cache
	CacheMissesTotal CounterVec // cache

	// System health
	HealthCheckStatus GaugeVec   // component
	ErrorsTotal       CounterVec // component, code
}

// Bucket sets tuned to the service's latency profile.  Map builds over large
// supply-curve files routinely take tens of seconds, so their buckets run
// far past the usual HTTP ranges.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultMapBuildBuckets     = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}
	DefaultReadDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 5, 15, 60}
	DefaultRowCountBuckets     = []float64{1000, 10000, 50000, 100000, 500000, 1000000, 5000000}
	DefaultSizeBuckets         = []float64{1000, 10000, 100000, 1000000, 10000000, 100000000}
)

// NewAppMetrics registers all application metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	// Map
	m.MapBuildsTotal = collector.RegisterCounter("map_builds_total", "Map figure builds", "project", "status")
	m.MapBuildDuration = collector.RegisterHistogram("map_build_duration_seconds", "Map figure build duration", DefaultMapBuildBuckets, "project")
	m.MapPointsPlotted = collector.RegisterHistogram("map_points_plotted", "Points plotted per map figure", DefaultRowCountBuckets, "project")
	m.TitleBuildsTotal = collector.RegisterCounter("title_builds_total", "Map title builds", "project")

	// Dataset
	m.DatasetReadsTotal = collector.RegisterCounter("dataset_reads_total", "Supply-curve file reads", "format", "status")
	m.DatasetReadDuration = collector.RegisterHistogram("dataset_read_duration_seconds", "Supply-curve file read duration", DefaultReadDurationBuckets, "format")
	m.DatasetRowsRead = collector.RegisterHistogram("dataset_rows_read", "Rows read per supply-curve file", DefaultRowCountBuckets, "format")

	// Project registry
	m.ProjectsLoaded = collector.RegisterGauge("projects_loaded", "Projects currently registered")
	m.ProjectReloadsTotal = collector.RegisterCounter("project_reloads_total", "Project registry reloads", "trigger")

	// Cache
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording helpers
//
// All helpers tolerate a nil *AppMetrics so callers built without metrics
// (the CLI render path) need no guards of their own.
// ─────────────────────────────────────────────────────────────────────────────

// RecordHTTPRequest records the counters and histograms for one request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int) {
	if m == nil {
		return
	}
	status := strconv.Itoa(statusCode)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if respSize >= 0 {
		m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
	}
}

// RecordMapBuild records one figure build, successful or not.
func RecordMapBuild(m *AppMetrics, project string, duration time.Duration, points int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.MapBuildsTotal.WithLabelValues(project, status).Inc()
	if err == nil {
		m.MapBuildDuration.WithLabelValues(project).Observe(duration.Seconds())
		m.MapPointsPlotted.WithLabelValues(project).Observe(float64(points))
	}
}

// RecordTitleBuild counts one standalone title build.
func RecordTitleBuild(m *AppMetrics, project string) {
	if m == nil {
		return
	}
	m.TitleBuildsTotal.WithLabelValues(project).Inc()
}

// RecordDatasetRead records one file read.
func RecordDatasetRead(m *AppMetrics, format string, duration time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DatasetReadsTotal.WithLabelValues(format, status).Inc()
	if err == nil {
		m.DatasetReadDuration.WithLabelValues(format).Observe(duration.Seconds())
		m.DatasetRowsRead.WithLabelValues(format).Observe(float64(rows))
	}
}

// RecordCacheAccess counts a hit or a miss against the named cache.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordProjectReload counts a registry reload and updates the loaded gauge.
func RecordProjectReload(m *AppMetrics, trigger string, loaded int) {
	if m == nil {
		return
	}
	m.ProjectReloadsTotal.WithLabelValues(trigger).Inc()
	m.ProjectsLoaded.WithLabelValues().Set(float64(loaded))
}

// RecordError counts one error by component and code.
func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// RecordHealthCheck sets the health gauge for one component.
func RecordHealthCheck(m *AppMetrics, component string, healthy bool) {
	if m == nil {
		return
	}
	v := 0.0
	if healthy {
		v = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}
