package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllFieldsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.MapBuildsTotal)
	assert.NotNil(t, m.MapBuildDuration)
	assert.NotNil(t, m.MapPointsPlotted)
	assert.NotNil(t, m.DatasetReadsTotal)
	assert.NotNil(t, m.ProjectsLoaded)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/map", 200, 100*time.Millisecond, 2048)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_http_requests_total{method="POST",path="/api/v1/map",status_code="200"} 1`)
	assert.Contains(t, output, `test_unit_http_request_duration_seconds_count{method="POST",path="/api/v1/map"} 1`)
	assert.Contains(t, output, `test_unit_http_response_size_bytes_sum{method="POST",path="/api/v1/map"} 2048`)
}

func TestRecordMapBuild_Success(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordMapBuild(m, "hydrogen", 3*time.Second, 52000, nil)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_map_builds_total{project="hydrogen",status="ok"} 1`)
	assert.Contains(t, output, `test_unit_map_build_duration_seconds_count{project="hydrogen"} 1`)
	assert.Contains(t, output, `test_unit_map_points_plotted_sum{project="hydrogen"} 52000`)
}

func TestRecordMapBuild_Error(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordMapBuild(m, "hydrogen", time.Second, 0, assert.AnError)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_map_builds_total{project="hydrogen",status="error"} 1`)
	// Failed builds do not skew the duration histogram.
	assert.NotContains(t, output, `test_unit_map_build_duration_seconds_count{project="hydrogen"} 1`)
}

func TestRecordDatasetRead(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDatasetRead(m, "csv", 500*time.Millisecond, 120000, nil)
	RecordDatasetRead(m, "parquet", 0, 0, assert.AnError)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_dataset_reads_total{format="csv",status="ok"} 1`)
	assert.Contains(t, output, `test_unit_dataset_rows_read_sum{format="csv"} 120000`)
	assert.Contains(t, output, `test_unit_dataset_reads_total{format="parquet",status="error"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "frame", true)
	RecordCacheAccess(m, "frame", true)
	RecordCacheAccess(m, "frame", false)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_cache_hits_total{cache="frame"} 2`)
	assert.Contains(t, output, `test_unit_cache_misses_total{cache="frame"} 1`)
}

func TestRecordProjectReload(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordProjectReload(m, "fsnotify", 7)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_project_reloads_total{trigger="fsnotify"} 1`)
	assert.Contains(t, output, "test_unit_projects_loaded 7")
}

func TestRecordError(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordError(m, "tabular", "DATA_003")

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_errors_total{code="DATA_003",component="tabular"} 1`)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	// The CLI render path runs without a collector; helpers must be no-ops.
	RecordHTTPRequest(nil, "GET", "/", 200, time.Second, 0)
	RecordMapBuild(nil, "p", time.Second, 1, nil)
	RecordTitleBuild(nil, "p")
	RecordDatasetRead(nil, "csv", time.Second, 1, nil)
	RecordCacheAccess(nil, "frame", true)
	RecordProjectReload(nil, "manual", 0)
	RecordError(nil, "c", "code")
}

func TestConcurrentRecording(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				RecordHTTPRequest(m, "GET", "/health", 200, time.Millisecond, 16)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
