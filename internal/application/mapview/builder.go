package mapview

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/domain/signal"
	"github.com/wmcornejo/reView/pkg/errors"
	"github.com/wmcornejo/reView/pkg/types/figure"
)

// Well-known scenario data columns consumed by the builder.
const (
	latColumn         = "latitude"
	lonColumn         = "longitude"
	countyColumn      = "county"
	stateColumn       = "state"
	demandCountColumn = "demand_connect_count"
	h2SupplyColumn    = "hydrogen_annual_kg"
	distToLoadColumn  = "dist_to_selected_load"
)

// Demand node frame columns.
const (
	demandNodeColumn  = "sera_node"
	demandStateColumn = "State"
	demandLoadColumn  = "load"
)

// categoryUnits switches the map to one legend-bearing trace per value.
const categoryUnits = "category"

// emptyFrameText is the annotation shown when no points survive filtering.
const emptyFrameText = "No matching data found"

// Options are the view settings accompanying a map request.
type Options struct {
	// Basemap is the mapbox style name.
	Basemap string `json:"basemap,omitempty"`

	// Color names an entry of ColorScales.
	Color string `json:"color,omitempty"`

	// PointSize is the marker size in px.
	PointSize int `json:"point_size,omitempty"`

	// ReverseColor is the reverse-colorscale button's click counter; an odd
	// count reverses the scale.
	ReverseColor int `json:"reverse_color,omitempty"`

	// MapFunction selects derived map behavior; functions prefixed "demand"
	// overlay hydrogen demand nodes.
	MapFunction string `json:"map_function,omitempty"`

	// UserYMin and UserYMax override the project's configured display
	// bounds for the plotted variable.  nil leaves the configured bound in
	// force; zero is a real bound.
	UserYMin *float64 `json:"ymin,omitempty"`
	UserYMax *float64 `json:"ymax,omitempty"`

	// TitleSize is the title font size in px.
	TitleSize int `json:"title_size,omitempty"`
}

func (o *Options) applyDefaults() {
	if o.Basemap == "" {
		o.Basemap = DefaultBasemap
	}
	if o.Color == "" {
		o.Color = "Default"
	}
	if o.PointSize <= 0 {
		o.PointSize = DefaultPointSize
	}
	if o.TitleSize <= 0 {
		o.TitleSize = DefaultTitleSize
	}
}

// Builder renders one map request into a figure.  Construction applies the
// selections (copying) and resolves units and display bounds; the input
// frame is never mutated.
type Builder struct {
	sig    *signal.Signal
	cfg    *project.Config
	frame  *dataset.Frame
	demand *dataset.Frame
	opts   Options
	mapSel *Selection

	units        string
	scaleMin     *float64
	scaleMax     *float64
	reverseScale bool
}

// NewBuilder prepares a map render.  demand may be nil; it is only consulted
// for demand-aware map functions on non-category maps.
func NewBuilder(
	sig *signal.Signal,
	cfg *project.Config,
	frame *dataset.Frame,
	demand *dataset.Frame,
	opts Options,
	mapSel, chartSel, clickSel *Selection,
) (*Builder, error) {
	if sig == nil || cfg == nil {
		return nil, errors.New(errors.ErrCodeInternal, "mapview: signal and project config are required")
	}
	if frame == nil {
		frame = dataset.New()
	}
	opts.applyDefaults()

	filtered, err := applySelections(frame, chartSel, mapSel, clickSel)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		sig:          sig,
		cfg:          cfg,
		frame:        filtered,
		opts:         opts,
		mapSel:       mapSel,
		units:        cfg.UnitsFor(sig.Y),
		reverseScale: opts.ReverseColor%2 == 1,
	}
	if demandAware(opts.MapFunction) && b.units != categoryUnits {
		b.demand = demand
	}

	// User bounds beat the configured scale; nil means unset.
	if scale, ok := cfg.ScaleFor(sig.Y); ok {
		b.scaleMin, b.scaleMax = scale.Min, scale.Max
	}
	if opts.UserYMin != nil {
		b.scaleMin = opts.UserYMin
	}
	if opts.UserYMax != nil {
		b.scaleMax = opts.UserYMax
	}
	return b, nil
}

// Y returns the plotted column: demand connection counts when the frame
// carries them, otherwise the signal's variable.
func (b *Builder) Y() string {
	if b.frame.Has(demandCountColumn) {
		return demandCountColumn
	}
	return b.sig.Y
}

// Units returns the display units resolved for the plotted variable.
func (b *Builder) Units() string {
	return b.units
}

// YMin resolves the lower display bound: the user/configured minimum, or the
// data minimum when only a maximum was supplied.  nil auto-ranges.
func (b *Builder) YMin() *float64 {
	if b.scaleMax != nil && b.scaleMin == nil {
		return b.dataBound(b.frame.Min)
	}
	return b.scaleMin
}

// YMax resolves the upper display bound: the user/configured maximum, or the
// data maximum when only a minimum was supplied.  nil auto-ranges.
func (b *Builder) YMax() *float64 {
	if b.scaleMin != nil && b.scaleMax == nil {
		return b.dataBound(b.frame.Max)
	}
	return b.scaleMax
}

func (b *Builder) dataBound(agg func(string) (float64, error)) *float64 {
	v, err := agg(b.Y())
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// MapCapacities returns sc_point_gid → print_capacity for the rendered
// points; the frontend's capacity readout consumes it.  Empty when the
// frame lacks either column.
func (b *Builder) MapCapacities() map[string]float64 {
	gids, ok := b.frame.Floats(gidColumn)
	caps, capsOK := b.frame.Floats(printCapacityColumn)
	if !ok || !capsOK {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(gids))
	for i, g := range gids {
		out[formatGID(g)] = caps[i]
	}
	return out
}

func formatGID(g float64) string {
	return strconv.FormatFloat(g, 'f', -1, 64)
}

// PointCount returns the number of points surviving selection filtering.
func (b *Builder) PointCount() int {
	return b.frame.Len()
}

// Title builds the figure title, including the map selection count.
func (b *Builder) Title() string {
	return BuildTitle(b.frame, b.sig, b.cfg, b.mapSel, nil)
}

// Figure assembles the scattermapbox figure: traces, marker styling, hover
// text, and layout.
func (b *Builder) Figure(ctx context.Context) (*figure.Figure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fig := &figure.Figure{Data: []figure.Trace{}}
	b.applyLayout(&fig.Layout)

	if b.frame.Empty() {
		fig.Layout.XAxis = &figure.Axis{Visible: figure.Bool(false)}
		fig.Layout.YAxis.Visible = figure.Bool(false)
		fig.Layout.Annotations = []figure.Annotation{{
			Text:      emptyFrameText,
			XRef:      "paper",
			YRef:      "paper",
			ShowArrow: false,
			Font:      &figure.Font{Size: 28},
		}}
		return fig, nil
	}

	if b.units == categoryUnits {
		traces, err := b.categoryTraces()
		if err != nil {
			return nil, err
		}
		fig.Data = traces
		return fig, nil
	}

	trace, err := b.numericTrace()
	if err != nil {
		return nil, err
	}
	fig.Data = append(fig.Data, trace)
	if overlay := b.demandTrace(); overlay != nil {
		fig.Data = append(fig.Data, *overlay)
	}
	return fig, nil
}

func (b *Builder) applyLayout(l *figure.Layout) {
	*l = baseLayout()
	l.Mapbox.Style = b.opts.Basemap
	l.ShowLegend = figure.Bool(b.units == categoryUnits)
	l.Title.Text = b.Title()
	l.Title.Font.Size = b.opts.TitleSize
	l.UIRevision = true
	l.YAxis = &figure.Axis{Range: []*float64{b.YMin(), b.YMax()}}
	l.Legend = &figure.Legend{
		Title:   &figure.LegendTitle{Font: &figure.Font{Family: legendFontFamily}},
		BGColor: legendBackground,
		Font:    &figure.Font{Family: legendFontFamily, Size: legendFontSize, Color: legendFontColor},
	}
}

func (b *Builder) coordinates() (lat, lon []float64, err error) {
	lat, latOK := b.frame.Floats(latColumn)
	lon, lonOK := b.frame.Floats(lonColumn)
	if !latOK || !lonOK {
		return nil, nil, errors.New(errors.ErrCodeColumnNotFound,
			"mapview: scenario data has no latitude/longitude columns")
	}
	return lat, lon, nil
}

// customData builds the per-point [gid, print_capacity] rows; nil when the
// frame lacks either column.
func (b *Builder) customData() [][]float64 {
	gids, ok := b.frame.Floats(gidColumn)
	caps, capsOK := b.frame.Floats(printCapacityColumn)
	if !ok || !capsOK {
		return nil
	}
	rows := make([][]float64, len(gids))
	for i := range gids {
		rows[i] = []float64{gids[i], caps[i]}
	}
	return rows
}

func (b *Builder) numericTrace() (figure.Trace, error) {
	y := b.Y()
	vals, ok := b.frame.Floats(y)
	if !ok {
		return figure.Trace{}, errors.Newf(errors.ErrCodeColumnNotFound,
			"mapview: no numeric column %q in scenario data", y)
	}
	lat, lon, err := b.coordinates()
	if err != nil {
		return figure.Trace{}, err
	}

	return figure.Trace{
		Type:       "scattermapbox",
		Mode:       "markers",
		Lat:        lat,
		Lon:        lon,
		Text:       b.hoverText(),
		HoverInfo:  "text",
		CustomData: b.customData(),
		Marker: &figure.Marker{
			Color:        vals,
			ColorScale:   resolveColorScale(b.opts.Color),
			CMin:         b.YMin(),
			CMax:         b.YMax(),
			Opacity:      1.0,
			ReverseScale: b.reverseScale,
			Size:         b.opts.PointSize,
			ColorBar: &figure.ColorBar{
				Title: figure.ColorBarTitle{
					Text: b.units,
					Font: figure.Font{Size: colorBarFontSize, Color: colorBarFontColor, Family: colorBarFontFamily},
				},
				TickFont: figure.Font{Color: colorBarFontColor, Family: colorBarFontFamily},
			},
		},
	}, nil
}

func (b *Builder) categoryTraces() ([]figure.Trace, error) {
	y := b.Y()
	if !b.frame.Has(y) {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound,
			"mapview: no column %q in scenario data", y)
	}
	lat, lon, err := b.coordinates()
	if err != nil {
		return nil, err
	}

	labels := b.categoryLabels(y)
	texts := b.hoverText()
	custom := b.customData()

	// One trace per category value, in order of first appearance.
	var order []string
	rows := make(map[string][]int)
	for i, label := range labels {
		if _, seen := rows[label]; !seen {
			order = append(order, label)
		}
		rows[label] = append(rows[label], i)
	}

	traces := make([]figure.Trace, 0, len(order))
	for ti, label := range order {
		idx := rows[label]
		trace := figure.Trace{
			Type:       "scattermapbox",
			Mode:       "markers",
			Name:       label,
			Lat:        pick(lat, idx),
			Lon:        pick(lon, idx),
			Text:       pickStrings(texts, idx),
			HoverInfo:  "text",
			CustomData: pickRows(custom, idx),
			Marker: &figure.Marker{
				Color:        discreteColors[ti%len(discreteColors)],
				Opacity:      1.0,
				ReverseScale: b.reverseScale,
				Size:         b.opts.PointSize,
			},
			ShowLegend: figure.Bool(true),
		}
		traces = append(traces, trace)
	}
	return traces, nil
}

// categoryLabels renders the category column as display strings.
func (b *Builder) categoryLabels(y string) []string {
	if vals, ok := b.frame.Strings(y); ok {
		out := make([]string, len(vals))
		copy(out, vals)
		return out
	}
	vals, _ := b.frame.Floats(y)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = floatString(v)
	}
	return out
}

// demandTrace builds the red hydrogen-demand overlay; nil when no demand
// data is attached or it lacks the node/state/load/coordinate columns.
func (b *Builder) demandTrace() *figure.Trace {
	d := b.demand
	if d == nil || d.Empty() {
		return nil
	}
	lat, latOK := d.Floats(latColumn)
	lon, lonOK := d.Floats(lonColumn)
	nodes, nodesOK := d.Strings(demandNodeColumn)
	states, statesOK := d.Strings(demandStateColumn)
	loads, loadsOK := d.Floats(demandLoadColumn)
	if !latOK || !lonOK || !nodesOK || !statesOK || !loadsOK {
		return nil
	}

	texts := make([]string, d.Len())
	for i := range texts {
		texts[i] = nodes[i] + ", " + states[i] + ". <br>Demand:   " + floatString(loads[i]) + " kg"
	}
	return &figure.Trace{
		Type:      "scattermapbox",
		Mode:      "markers",
		Lat:       lat,
		Lon:       lon,
		Text:      texts,
		HoverInfo: "text",
		Marker:    &figure.Marker{Color: "red"},
	}
}

// hoverText renders the per-point hover strings for the main trace.  County
// and state prefixes drop out when the frame lacks those columns.
func (b *Builder) hoverText() []string {
	y := b.Y()
	n := b.frame.Len()
	texts := make([]string, n)

	county, countyOK := b.frame.Strings(countyColumn)
	state, stateOK := b.frame.Strings(stateColumn)
	located := countyOK && stateOK

	if b.units == categoryUnits {
		labels := b.categoryLabels(y)
		numeric, isNumeric := b.frame.Floats(y)
		for i := 0; i < n; i++ {
			if located {
				texts[i] = county[i] + " County, " + state[i] + ": <br>   " + labels[i] + " " + b.units
				continue
			}
			val := labels[i]
			if isNumeric {
				val = floatString(roundTo(numeric[i], 2))
			}
			texts[i] = val + " " + b.units
		}
		return texts
	}

	vals, _ := b.frame.Floats(y)
	h2, hasH2 := b.frame.Floats(h2SupplyColumn)
	dist, hasDist := b.frame.Floats(distToLoadColumn)
	label := toHuman(y)

	for i := 0; i < n; i++ {
		var sb strings.Builder
		if located {
			sb.WriteString(county[i])
			sb.WriteString(" County, ")
			sb.WriteString(state[i])
			sb.WriteString(":")
		}
		if hasH2 {
			sb.WriteString("<br>    H2 Supply:    ")
			sb.WriteString(commaFloat(h2[i]))
			sb.WriteString(" kg    ")
		}
		if hasDist {
			sb.WriteString("<br>    Dist to load:    ")
			sb.WriteString(commaFixed2(dist[i]))
			sb.WriteString(" km    ")
		}
		sb.WriteString("<br>    ")
		sb.WriteString(label)
		sb.WriteString(":   ")
		sb.WriteString(floatString(roundTo(vals[i], 2)))
		sb.WriteString(" ")
		sb.WriteString(b.units)
		texts[i] = sb.String()
	}
	return texts
}

func pick(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

func pickStrings(vals []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = vals[j]
	}
	return out
}

func pickRows(rows [][]float64, idx []int) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
