package mapview_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmcornejo/reView/internal/application/mapview"
	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/domain/signal"
	"github.com/wmcornejo/reView/internal/infrastructure/cache"
	"github.com/wmcornejo/reView/internal/infrastructure/monitoring/logging"
	"github.com/wmcornejo/reView/internal/infrastructure/tabular"
	"github.com/wmcornejo/reView/pkg/errors"
)

const windCSV = `sc_point_gid,print_capacity,latitude,longitude,county,state,mean_lcoe
1,10,39.1,-105.1,Larimer,Colorado,25.5
2,20,40.2,-106.2,Weld,Colorado,45.0
3,30,41.3,-107.3,Boulder,Colorado,60.0
`

const windHiCSV = `sc_point_gid,mean_lcoe
1,20.5
3,50.0
`

const demandCSV = `sera_node,State,load,latitude,longitude
Pueblo Node,Colorado,120000.5,38.2,-104.6
`

type serviceEnv struct {
	svc     mapview.Service
	dataDir string
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	dataDir := t.TempDir()
	writeFixture(t, dataDir, "wind_sc.csv", windCSV)
	writeFixture(t, dataDir, "wind_hi_sc.csv", windHiCSV)
	writeFixture(t, dataDir, "demand.csv", demandCSV)

	configDir := t.TempDir()
	writeFixture(t, configDir, "hydrogen.json", `{
		"project_name": "Hydrogen",
		"directory": "REVIEW_DATA_DIR",
		"demand_file": "REVIEW_DATA_DIR/demand.csv"
	}`)

	registry, err := project.NewRegistry(configDir, dataDir,
		tabular.NewSafeReader(nil, nil), logging.NewNopLogger())
	require.NoError(t, err)

	svc := mapview.NewService(registry, tabular.Reader{},
		cache.NewMemory(8), logging.NewNopLogger(), nil)
	return &serviceEnv{svc: svc, dataDir: dataDir}
}

func windSignal() signal.Signal {
	return signal.Signal{Path: "wind_sc.csv", Y: "mean_lcoe", Project: "hydrogen"}
}

func TestService_BuildMap(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	res, err := env.svc.BuildMap(context.Background(), &mapview.MapRequest{Signal: windSignal()})
	require.NoError(t, err)
	require.NotNil(t, res.Figure)
	require.Len(t, res.Figure.Data, 1)

	tr := res.Figure.Data[0]
	assert.Equal(t, []float64{25.5, 45, 60}, tr.Marker.Color)
	assert.Equal(t, []float64{39.1, 40.2, 41.3}, tr.Lat)
	assert.Equal(t, "Larimer County, Colorado:<br>    Mean LCOE:   25.5 $/MWh", tr.Text[0])

	assert.Equal(t, map[string]float64{"1": 10, "2": 20, "3": 30}, res.MapCap)
	assert.Equal(t, "Wind<br>Mean Lcoe   |  Average: 43.5 $/MWh", res.Title)
	assert.Equal(t, res.Title, res.Figure.Layout.Title.Text)
}

func TestService_BuildMap_ServesCachedFrames(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	req := &mapview.MapRequest{Signal: windSignal()}

	first, err := env.svc.BuildMap(context.Background(), req)
	require.NoError(t, err)

	// The scenario file is gone, but the frame was memoized by signal.
	require.NoError(t, os.Remove(filepath.Join(env.dataDir, "wind_sc.csv")))

	second, err := env.svc.BuildMap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.MapCap, second.MapCap)
}

func TestService_BuildMap_Difference(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	sig := windSignal()
	sig.Path2 = "wind_hi_sc.csv"
	sig.Y = "mean_lcoe_diff"

	res, err := env.svc.BuildMap(context.Background(), &mapview.MapRequest{Signal: sig})
	require.NoError(t, err)
	require.Len(t, res.Figure.Data, 1)

	// Joined on sc_point_gid; gid 2 has no counterpart and drops out.
	assert.Equal(t, []float64{5, 10}, res.Figure.Data[0].Marker.Color)
	assert.Equal(t, map[string]float64{"1": 10, "3": 30}, res.MapCap)
	assert.Equal(t,
		"Wind vs. <br>Wind Hi<br>Mean Lcoe Diff   |  $/MWh Difference | Average: 7.5",
		res.Title)
}

func TestService_BuildMap_DemandOverlay(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	res, err := env.svc.BuildMap(context.Background(), &mapview.MapRequest{
		Signal:  windSignal(),
		Options: mapview.Options{MapFunction: "demand"},
	})
	require.NoError(t, err)
	require.Len(t, res.Figure.Data, 2)

	overlay := res.Figure.Data[1]
	assert.Equal(t, "red", overlay.Marker.Color)
	assert.Equal(t, "Pueblo Node, Colorado. <br>Demand:   120000.5 kg", overlay.Text[0])
}

func TestService_BuildMap_Selections(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	res, err := env.svc.BuildMap(context.Background(), &mapview.MapRequest{
		Signal: windSignal(),
		MapSel: &mapview.Selection{Points: []mapview.Point{
			{CustomData: []float64{1, 10}},
			{CustomData: []float64{3, 30}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"1": 10, "3": 30}, res.MapCap)
	assert.Equal(t,
		"Wind<br>Mean Lcoe   |  Average: 42.75 $/MWh  |  Selected point count: 2",
		res.Title)
}

func TestService_BuildMap_Errors(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	t.Run("unknown project", func(t *testing.T) {
		t.Parallel()
		sig := windSignal()
		sig.Project = "nope"
		_, err := env.svc.BuildMap(ctx, &mapview.MapRequest{Signal: sig})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeProjectUnknown))
	})

	t.Run("invalid signal", func(t *testing.T) {
		t.Parallel()
		sig := windSignal()
		sig.Y = ""
		_, err := env.svc.BuildMap(ctx, &mapview.MapRequest{Signal: sig})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeSignalInvalid))
	})

	t.Run("diff without second path", func(t *testing.T) {
		t.Parallel()
		sig := windSignal()
		sig.Y = "mean_lcoe_diff"
		_, err := env.svc.BuildMap(ctx, &mapview.MapRequest{Signal: sig})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeSignalInvalid))
	})

	t.Run("missing scenario file", func(t *testing.T) {
		t.Parallel()
		sig := windSignal()
		sig.Path = "ghost_sc.csv"
		_, err := env.svc.BuildMap(ctx, &mapview.MapRequest{Signal: sig})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeReadFailure))
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()
		sig := windSignal()
		sig.Path = "notes.txt"
		_, err := env.svc.BuildMap(ctx, &mapview.MapRequest{Signal: sig})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedFormat))
	})
}

func TestService_BuildTitle(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	mapRes, err := env.svc.BuildMap(ctx, &mapview.MapRequest{Signal: windSignal()})
	require.NoError(t, err)

	titleRes, err := env.svc.BuildTitle(ctx, &mapview.TitleRequest{Signal: windSignal()})
	require.NoError(t, err)
	assert.Equal(t, mapRes.Title, titleRes.Title)
}

func TestService_BuildTitle_ChartSelection(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	res, err := env.svc.BuildTitle(context.Background(), &mapview.TitleRequest{
		Signal: windSignal(),
		ChartSel: &mapview.Selection{Points: []mapview.Point{
			{CustomData: []float64{2, 20}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"Wind<br>Mean Lcoe   |  Average: 45.0 $/MWh<br>Selected point count: 1",
		res.Title)
}
