package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/domain/signal"
)

func TestBuildName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path, want string
	}{
		{"/data/runs/atb2020_moderate_sc.csv", "Atb2020 Moderate"},
		{"open_access_agg.csv", "Open Access"},
		{"solar_supply-curve.csv", "Solar"},
		{"wind.h5", "Wind"},
		// Doubled underscores survive as doubled spaces.
		{"least_cost_by_mean_lcoe__fcr-098_sites_sc.csv", "Least Cost By Mean Lcoe  Fcr-098 Sites"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buildName(tt.path), tt.path)
	}
}

func TestCapitalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"wind", "Wind"},
		{"ATB", "Atb"},
		{"fcr-098", "Fcr-098"},
		{"a", "A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, capitalize(tt.in))
	}
}

func TestInferRecalc(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name, in, want string
	}{
		{
			"not least cost",
			"Open Access Fcr-098",
			"Open Access Fcr-098",
		},
		{
			"no recalc variables",
			"Least Cost By Transmission Sites",
			"Least Cost By Transmission",
		},
		{
			"single variable",
			"Least Cost By Mean Lcoe  Fcr-098 Sites",
			"Least Cost By Mean Lcoe (Fcr: .098)",
		},
		{
			"multiple variables",
			"Least Cost  Fcr-098 Capex-1323 Sites",
			"Least Cost (Fcr: .098, Capex: .1323)",
		},
		{
			"variable without doubled space",
			"Least Cost Fcr-098 Sites",
			"Least Cost Fcr.098",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, inferRecalc(tt.in))
		})
	}
}

// titleFrame builds a one-column numeric frame.
func titleFrame(t *testing.T, col string, vals []float64) *dataset.Frame {
	t.Helper()
	f := dataset.New()
	require.NoError(t, f.AddFloats(col, vals))
	return f
}

func TestBuildTitle(t *testing.T) {
	t.Parallel()

	fp := func(v float64) *float64 { return &v }
	cfg := &project.Config{
		Name:   "Hydrogen",
		Titles: map[string]string{"mean_lcoe": "Mean Site LCOE"},
		Units:  map[string]string{"class": "category"},
	}
	baseSig := signal.Signal{Path: "atb2020_moderate_sc.csv", Y: "mean_lcoe", Project: "hydrogen"}

	t.Run("average readout with units", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		got := BuildTitle(titleFrame(t, "mean_lcoe", []float64{40, 50}), &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>Mean Site LCOE   |  Average: 45.0 $/MWh", got)
	})

	t.Run("capacity totals in TW", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Y = "capacity"
		got := BuildTitle(titleFrame(t, "capacity", []float64{2_000_000, 3_000_000}), &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>Capacity   |  Total: 5.0 TW", got)
	})

	t.Run("unknown variable averages without units", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Y = "custom_score"
		got := BuildTitle(titleFrame(t, "custom_score", []float64{2, 4}), &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>Custom Score   |  Average: 3.0 ", got)
	})

	t.Run("missing column skips readout", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		got := BuildTitle(titleFrame(t, "other", []float64{1}), &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>Mean Site LCOE", got)
	})

	t.Run("nil frame skips readout", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		got := BuildTitle(nil, &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>Mean Site LCOE", got)
	})

	t.Run("category units skip readout", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Y = "class"
		got := BuildTitle(titleFrame(t, "class", []float64{1, 2}), &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>Class", got)
	})

	t.Run("none variable skips readout", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Y = "None"
		got := BuildTitle(titleFrame(t, "None", []float64{1}), &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>None", got)
	})

	t.Run("recalc annotations on scenario name", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.RecalcTable = &signal.RecalcTable{
			ScenarioA: signal.RecalcValues{FCR: fp(0.098), Losses: fp(0.16)},
		}
		got := BuildTitle(titleFrame(t, "mean_lcoe", []float64{40, 50}), &sig, cfg, nil, nil)
		assert.Equal(t,
			"Atb2020 Moderate (fcr: 0.098, losses: 0.16)<br>Mean Site LCOE   |  Average: 45.0 $/MWh",
			got)
	})

	t.Run("recalc off drops annotations", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Recalc = signal.RecalcOff
		sig.RecalcTable = &signal.RecalcTable{
			ScenarioA: signal.RecalcValues{FCR: fp(0.098)},
		}
		got := BuildTitle(titleFrame(t, "mean_lcoe", []float64{40, 50}), &sig, cfg, nil, nil)
		assert.Equal(t, "Atb2020 Moderate<br>Mean Site LCOE   |  Average: 45.0 $/MWh", got)
	})

	t.Run("least cost names rewrite instead of annotating", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Path = "least_cost_by_mean_lcoe__fcr-098_sites_sc.csv"
		sig.RecalcTable = &signal.RecalcTable{
			ScenarioA: signal.RecalcValues{FCR: fp(0.098)},
		}
		got := BuildTitle(titleFrame(t, "mean_lcoe", []float64{40, 50}), &sig, cfg, nil, nil)
		assert.Equal(t,
			"Least Cost By Mean Lcoe (Fcr: .098)<br>Mean Site LCOE   |  Average: 45.0 $/MWh",
			got)
	})

	t.Run("difference", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Path = "scen_a_sc.csv"
		sig.Path2 = "/runs/scen_b_sc.csv"
		sig.Y = "mean_lcoe_diff"
		got := BuildTitle(titleFrame(t, "mean_lcoe_diff", []float64{-5, 5}), &sig, cfg, nil, nil)
		assert.Equal(t,
			"Scen A vs. <br>Scen B<br>Mean Site LCOE   |  $/MWh Difference | Average: 0.0",
			got)
	})

	t.Run("percent difference", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Path = "scen_a_sc.csv"
		sig.Path2 = "scen_b_sc.csv"
		sig.Y = "mean_lcoe_pctdiff"
		got := BuildTitle(titleFrame(t, "mean_lcoe_pctdiff", []float64{10, 30}), &sig, cfg, nil, nil)
		assert.Equal(t,
			"Scen A vs. <br>Scen B<br>Mean Site LCOE   |  % Difference | Average: 20.0",
			got)
	})

	t.Run("difference annotates both scenarios", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		sig.Path = "scen_a_sc.csv"
		sig.Path2 = "scen_b_sc.csv"
		sig.Y = "mean_lcoe_diff"
		sig.RecalcTable = &signal.RecalcTable{
			ScenarioA: signal.RecalcValues{FCR: fp(0.1)},
			ScenarioB: signal.RecalcValues{CAPEX: fp(1323)},
		}
		got := BuildTitle(titleFrame(t, "mean_lcoe_diff", []float64{-5, 5}), &sig, cfg, nil, nil)
		assert.Equal(t,
			"Scen A (fcr: 0.1) vs. <br>Scen B (capex: 1323)<br>Mean Site LCOE   |  $/MWh Difference | Average: 0.0",
			got)
	})

	t.Run("hydrogen total appended", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		frame := titleFrame(t, "mean_lcoe", []float64{40, 50})
		frame, err := frame.WithFloats("hydrogen_annual_kg", []float64{1000.25, 2000})
		require.NoError(t, err)
		got := BuildTitle(frame, &sig, cfg, nil, nil)
		assert.Equal(t,
			"Atb2020 Moderate<br>Mean Site LCOE   |  Average: 45.0 $/MWh   |  Total H2: 3,000.25",
			got)
	})

	t.Run("selection counts", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		mapSel := &Selection{Points: make([]Point, 2)}
		chartSel := &Selection{Points: make([]Point, 1)}
		got := BuildTitle(titleFrame(t, "mean_lcoe", []float64{40, 50}), &sig, cfg, mapSel, chartSel)
		assert.Equal(t,
			"Atb2020 Moderate<br>Mean Site LCOE   |  Average: 45.0 $/MWh"+
				"  |  Selected point count: 2<br>Selected point count: 1",
			got)
	})

	t.Run("selection counts are comma grouped", func(t *testing.T) {
		t.Parallel()
		sig := baseSig
		mapSel := &Selection{Points: make([]Point, 1200)}
		got := BuildTitle(nil, &sig, cfg, mapSel, nil)
		assert.Equal(t,
			"Atb2020 Moderate<br>Mean Site LCOE  |  Selected point count: 1,200",
			got)
	})
}
