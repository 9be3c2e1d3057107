package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmcornejo/reView/internal/domain/dataset"
)

func TestSelection_GIDs(t *testing.T) {
	t.Parallel()

	var none *Selection
	assert.Nil(t, none.GIDs())
	assert.Equal(t, 0, none.Count())

	sel := &Selection{Points: []Point{
		{CustomData: []float64{7, 120}},
		{Lat: 40, Lon: -105}, // clicked a trace without custom data
		{CustomData: []float64{9, 80}},
	}}
	assert.Equal(t, []float64{7, 9}, sel.GIDs())
	assert.Equal(t, 3, sel.Count())
}

func TestApplySelections(t *testing.T) {
	t.Parallel()

	frame := dataset.New()
	require.NoError(t, frame.AddFloats(gidColumn, []float64{1, 2, 3, 4}))
	require.NoError(t, frame.AddFloats("mean_lcoe", []float64{10, 20, 30, 40}))

	sel := func(gids ...float64) *Selection {
		s := &Selection{}
		for _, g := range gids {
			s.Points = append(s.Points, Point{CustomData: []float64{g}})
		}
		return s
	}

	t.Run("filters in order", func(t *testing.T) {
		t.Parallel()
		got, err := applySelections(frame, sel(1, 2, 3), sel(2, 3), sel(3))
		require.NoError(t, err)
		assert.Equal(t, 1, got.Len())
		vals, _ := got.Floats("mean_lcoe")
		assert.Equal(t, []float64{30}, vals)
		// The input frame is untouched.
		assert.Equal(t, 4, frame.Len())
	})

	t.Run("nil and empty selections are skipped", func(t *testing.T) {
		t.Parallel()
		got, err := applySelections(frame, nil, &Selection{}, sel(4))
		require.NoError(t, err)
		assert.Equal(t, 1, got.Len())
	})

	t.Run("frames without gids pass through", func(t *testing.T) {
		t.Parallel()
		plain := dataset.New()
		require.NoError(t, plain.AddFloats("mean_lcoe", []float64{10, 20}))
		got, err := applySelections(plain, sel(1))
		require.NoError(t, err)
		assert.Equal(t, 2, got.Len())
	})
}

func TestDemandAware(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want bool
	}{
		{"demand", true},
		{"demand_by_distance", true},
		{"Demand Sites", true},
		{"  demand", true},
		{"supply", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, demandAware(tt.in), tt.in)
	}
}
