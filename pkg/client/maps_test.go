package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestMapsClient_Build(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/map", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))

		sig := body["signal"].(map[string]interface{})
		assert.Equal(t, "hydrogen", sig["project"])
		assert.Equal(t, "wind_sc.csv", sig["path"])
		assert.Equal(t, "mean_lcoe", sig["y"])
		assert.NotContains(t, sig, "path2")

		opts := body["options"].(map[string]interface{})
		assert.Equal(t, "Viridis", opts["color"])
		assert.Equal(t, 11.0, opts["point_size"])

		assert.NotContains(t, body, "map_selection")
		assert.NotContains(t, body, "chart_selection")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"figure": {
				"data": [{"type": "scattermapbox", "name": "wind", "lat": [39.1], "lon": [-105.1]}],
				"layout": {"showlegend": false}
			},
			"mapcap": {"wind": 120.5},
			"title": "Hydrogen, wind | Mean LCOE"
		}`))
	}
	c := newTestClient(t, handler)

	result, err := c.Maps().Build(context.Background(), &MapRequest{
		Signal: Signal{
			Path:    "wind_sc.csv",
			Y:       "mean_lcoe",
			Project: "hydrogen",
		},
		Options: Options{
			Color:     "Viridis",
			PointSize: 11,
		},
	})
	require.NoError(t, err)

	require.NotNil(t, result.Figure)
	require.Len(t, result.Figure.Data, 1)
	assert.Equal(t, "scattermapbox", result.Figure.Data[0].Type)
	assert.Equal(t, "wind", result.Figure.Data[0].Name)
	assert.Equal(t, 120.5, result.MapCap["wind"])
	assert.Equal(t, "Hydrogen, wind | Mean LCOE", result.Title)
}

func TestMapsClient_Build_CarriesSelections(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))

		sel := body["map_selection"].(map[string]interface{})
		points := sel["points"].([]interface{})
		assert.Len(t, points, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"figure": {"data": [], "layout": {}}, "mapcap": {}, "title": ""}`))
	}
	c := newTestClient(t, handler)

	_, err := c.Maps().Build(context.Background(), &MapRequest{
		Signal: Signal{Path: "wind_sc.csv", Y: "mean_lcoe", Project: "hydrogen"},
		MapSel: &Selection{Points: []Point{
			{CustomData: []float64{1}, Lat: 39.1, Lon: -105.1},
			{CustomData: []float64{2}, Lat: 39.2, Lon: -105.2},
		}},
	})
	require.NoError(t, err)
}

func TestMapsClient_Build_NilRequest(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	_, err = c.Maps().Build(context.Background(), nil)
	assert.Error(t, err)
}

func TestMapsClient_Build_ValidatesSignal(t *testing.T) {
	tests := []struct {
		name   string
		signal Signal
	}{
		{"missing project", Signal{Path: "wind_sc.csv", Y: "mean_lcoe"}},
		{"missing path", Signal{Y: "mean_lcoe", Project: "hydrogen"}},
		{"missing y", Signal{Path: "wind_sc.csv", Project: "hydrogen"}},
	}

	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}
	c := newTestClient(t, handler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Maps().Build(context.Background(), &MapRequest{Signal: tt.signal})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "is required")
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "validation should fail before the request")
}

func TestMapsClient_Build_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"code": "MAP_002", "message": "building map figure"}}`))
	}
	c := newTestClient(t, handler, WithRetryMax(0))

	_, err := c.Maps().Build(context.Background(), &MapRequest{
		Signal: Signal{Path: "wind_sc.csv", Y: "mean_lcoe", Project: "hydrogen"},
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, "MAP_002", apiErr.Code)
}

func TestMapsClient_Title(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/title", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title": "Hydrogen, wind | Mean LCOE | Average: 25.5 $/MWh"}`))
	}
	c := newTestClient(t, handler)

	result, err := c.Maps().Title(context.Background(), &TitleRequest{
		Signal: Signal{Path: "wind_sc.csv", Y: "mean_lcoe", Project: "hydrogen"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hydrogen, wind | Mean LCOE | Average: 25.5 $/MWh", result.Title)
}

func TestMapsClient_Title_NilRequest(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	_, err = c.Maps().Title(context.Background(), nil)
	assert.Error(t, err)
}

func TestMapsClient_Title_ValidatesSignal(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	_, err = c.Maps().Title(context.Background(), &TitleRequest{
		Signal: Signal{Path: "wind_sc.csv", Y: "mean_lcoe"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project is required")
}

func TestRecalcTable_WireShape(t *testing.T) {
	table := RecalcTable{
		ScenarioA: RecalcValues{FCR: floatPtr(0.05), CAPEX: floatPtr(1100)},
		ScenarioB: RecalcValues{},
	}
	raw, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"scenario_a": {"fcr": 0.05, "capex": 1100, "opex": null, "losses": null},
		"scenario_b": {"fcr": null, "capex": null, "opex": null, "losses": null}
	}`, string(raw))
}
