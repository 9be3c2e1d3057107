package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/wmcornejo/reView/pkg/types/figure"
)

// MapsClient accesses the map and title build endpoints.
type MapsClient struct {
	client *Client
}

// RecalcValues carries cost assumption overrides for one scenario.  A nil
// field means "use the scenario's own value".
type RecalcValues struct {
	FCR    *float64 `json:"fcr"`
	CAPEX  *float64 `json:"capex"`
	OPEX   *float64 `json:"opex"`
	Losses *float64 `json:"losses"`
}

// RecalcTable pairs the overrides for the two compared scenarios.
type RecalcTable struct {
	ScenarioA RecalcValues `json:"scenario_a"`
	ScenarioB RecalcValues `json:"scenario_b"`
}

// Signal describes which scenario file(s) and column to plot.
type Signal struct {
	Path        string       `json:"path"`
	Path2       string       `json:"path2,omitempty"`
	X           string       `json:"x,omitempty"`
	Y           string       `json:"y"`
	Project     string       `json:"project"`
	Recalc      string       `json:"recalc,omitempty"`
	RecalcTable *RecalcTable `json:"recalc_table,omitempty"`
}

// Options are the user-facing display settings for a map build.
type Options struct {
	Basemap      string   `json:"basemap,omitempty"`
	Color        string   `json:"color,omitempty"`
	PointSize    int      `json:"point_size,omitempty"`
	ReverseColor int      `json:"reverse_color,omitempty"`
	MapFunction  string   `json:"map_function,omitempty"`
	UserYMin     *float64 `json:"ymin,omitempty"`
	UserYMax     *float64 `json:"ymax,omitempty"`
	TitleSize    int      `json:"title_size,omitempty"`
}

// Point is one selected point in a selection event payload.
type Point struct {
	CustomData []float64 `json:"customdata,omitempty"`
	Lat        float64   `json:"lat,omitempty"`
	Lon        float64   `json:"lon,omitempty"`
}

// Selection is a box/lasso/click selection event payload.
type Selection struct {
	Points []Point `json:"points"`
}

// MapRequest is the payload for POST /api/v1/map.
type MapRequest struct {
	Signal   Signal     `json:"signal"`
	Options  Options    `json:"options"`
	MapSel   *Selection `json:"map_selection,omitempty"`
	ChartSel *Selection `json:"chart_selection,omitempty"`
	ClickSel *Selection `json:"click_selection,omitempty"`
}

// MapResult is the rendered figure plus the per-scenario capacity readout and
// the figure title.
type MapResult struct {
	Figure *figure.Figure     `json:"figure"`
	MapCap map[string]float64 `json:"mapcap"`
	Title  string             `json:"title"`
}

// TitleRequest is the payload for POST /api/v1/title.
type TitleRequest struct {
	Signal   Signal     `json:"signal"`
	MapSel   *Selection `json:"map_selection,omitempty"`
	ChartSel *Selection `json:"chart_selection,omitempty"`
	ClickSel *Selection `json:"click_selection,omitempty"`
}

// TitleResult is the composed title.
type TitleResult struct {
	Title string `json:"title"`
}

// validateSignal applies the same checks the server would, so obviously bad
// requests fail before the network round-trip.
func validateSignal(s Signal) error {
	if strings.TrimSpace(s.Project) == "" {
		return fmt.Errorf("review: signal project is required")
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("review: signal path is required")
	}
	if strings.TrimSpace(s.Y) == "" {
		return fmt.Errorf("review: signal y is required")
	}
	return nil
}

// Build renders a scenario map figure.
func (mc *MapsClient) Build(ctx context.Context, req *MapRequest) (*MapResult, error) {
	if req == nil {
		return nil, fmt.Errorf("review: map request is required")
	}
	if err := validateSignal(req.Signal); err != nil {
		return nil, err
	}
	var result MapResult
	if err := mc.client.post(ctx, "/api/v1/map", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Title composes a map title without building the figure.
func (mc *MapsClient) Title(ctx context.Context, req *TitleRequest) (*TitleResult, error) {
	if req == nil {
		return nil, fmt.Errorf("review: title request is required")
	}
	if err := validateSignal(req.Signal); err != nil {
		return nil, err
	}
	var result TitleResult
	if err := mc.client.post(ctx, "/api/v1/title", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
