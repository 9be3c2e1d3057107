package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Liveness(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.NotEmpty(t, resp.Uptime)
}

func TestReadiness_NoCheckers(t *testing.T) {
	h := NewHealthHandler("test", nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	h.Readiness(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Empty(t, resp.Components)
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthHandler("test", nil,
		NewChecker("registry", func(ctx context.Context) error { return nil }),
		NewChecker("cache", func(ctx context.Context) error { return nil }),
	)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	h.Readiness(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Len(t, resp.Components, 2)
	assert.Equal(t, "healthy", resp.Components["registry"].Status)
	assert.Equal(t, "healthy", resp.Components["cache"].Status)
}

func TestReadiness_FailingChecker(t *testing.T) {
	h := NewHealthHandler("test", nil,
		NewChecker("registry", func(ctx context.Context) error { return nil }),
		NewChecker("cache", func(ctx context.Context) error {
			return errors.New("connection refused")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	h.Readiness(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "healthy", resp.Components["registry"].Status)
	assert.Equal(t, "unhealthy", resp.Components["cache"].Status)
	assert.Equal(t, "connection refused", resp.Components["cache"].Error)
}

func TestDetailed(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler("9.9.9", nil,
			NewChecker("registry", func(ctx context.Context) error { return nil }),
		)

		req := httptest.NewRequest(http.MethodGet, "/healthz/detail", nil)
		rec := httptest.NewRecorder()

		h.Detailed(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status     string                    `json:"status"`
			Version    string                    `json:"version"`
			Components map[string]ComponentCheck `json:"components"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "9.9.9", resp.Version)
		assert.NotEmpty(t, resp.Components["registry"].Latency)
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler("9.9.9", nil,
			NewChecker("cache", func(ctx context.Context) error {
				return errors.New("timeout")
			}),
		)

		req := httptest.NewRequest(http.MethodGet, "/healthz/detail", nil)
		rec := httptest.NewRecorder()

		h.Detailed(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
	})
}
