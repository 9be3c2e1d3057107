// Package figure defines the plotting-library-compatible figure DTOs emitted
// by the map builder.  Field names follow the plotly JSON schema so the
// serialized form can be handed directly to a plotly-based frontend.
package figure

// Figure is a complete plotly figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single scattermapbox trace.
type Trace struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Lat        []float64   `json:"lat,omitempty"`
	Lon        []float64   `json:"lon,omitempty"`
	Text       []string    `json:"text,omitempty"`
	HoverInfo  string      `json:"hoverinfo,omitempty"`
	CustomData [][]float64 `json:"customdata,omitempty"`
	Marker     *Marker     `json:"marker,omitempty"`
	ShowLegend *bool       `json:"showlegend,omitempty"`
}

// Marker styles the points of one trace.  Color is either a single CSS color
// (categorical and overlay traces) or a per-point value slice (numeric
// traces scaled through ColorScale).
type Marker struct {
	Color        interface{} `json:"color,omitempty"`
	ColorScale   string      `json:"colorscale,omitempty"`
	CMin         *float64    `json:"cmin,omitempty"`
	CMax         *float64    `json:"cmax,omitempty"`
	Opacity      float64     `json:"opacity,omitempty"`
	ReverseScale bool        `json:"reversescale,omitempty"`
	Size         int         `json:"size,omitempty"`
	ColorBar     *ColorBar   `json:"colorbar,omitempty"`
}

// ColorBar configures the numeric color scale legend.
type ColorBar struct {
	Title    ColorBarTitle `json:"title"`
	TickFont Font          `json:"tickfont"`
}

// ColorBarTitle is the colorbar heading.
type ColorBarTitle struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

// Font is a plotly font descriptor.
type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Layout carries the figure-level presentation settings.
type Layout struct {
	DragMode     string       `json:"dragmode,omitempty"`
	Font         *Font        `json:"font,omitempty"`
	HoverMode    string       `json:"hovermode,omitempty"`
	Margin       *Margin      `json:"margin,omitempty"`
	PaperBGColor string       `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string       `json:"plot_bgcolor,omitempty"`
	ShowLegend   *bool        `json:"showlegend,omitempty"`
	Legend       *Legend      `json:"legend,omitempty"`
	Title        *Title       `json:"title,omitempty"`
	UIRevision   bool         `json:"uirevision,omitempty"`
	XAxis        *Axis        `json:"xaxis,omitempty"`
	YAxis        *Axis        `json:"yaxis,omitempty"`
	Mapbox       *Mapbox      `json:"mapbox,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty"`
}

// Title is the figure heading block.
type Title struct {
	Text    string   `json:"text"`
	Font    *Font    `json:"font,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	YRef    string   `json:"yref,omitempty"`
	YAnchor string   `json:"yanchor,omitempty"`
	Pad     *Pad     `json:"pad,omitempty"`
}

// Pad is title padding in pixels.
type Pad struct {
	B int `json:"b,omitempty"`
}

// Legend styles the categorical legend box.
type Legend struct {
	Title   *LegendTitle `json:"title,omitempty"`
	BGColor string       `json:"bgcolor,omitempty"`
	Font    *Font        `json:"font,omitempty"`
}

// LegendTitle is the legend heading; only its font is styled.
type LegendTitle struct {
	Font *Font `json:"font,omitempty"`
}

// Margin is the figure margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Axis configures one cartesian axis.  Range entries may be null when a
// bound is unresolved and the frontend should auto-range.
type Axis struct {
	Visible *bool      `json:"visible,omitempty"`
	Range   []*float64 `json:"range,omitempty"`
}

// Mapbox configures the base map.
type Mapbox struct {
	AccessToken string  `json:"accesstoken,omitempty"`
	Style       string  `json:"style,omitempty"`
	Center      *Center `json:"center,omitempty"`
	Zoom        float64 `json:"zoom,omitempty"`
}

// Center is a lon/lat map center.
type Center struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Annotation is a free-floating text label.
type Annotation struct {
	Text      string `json:"text"`
	XRef      string `json:"xref,omitempty"`
	YRef      string `json:"yref,omitempty"`
	ShowArrow bool   `json:"showarrow"`
	Font      *Font  `json:"font,omitempty"`
}

// Bool returns a pointer to v; plotly distinguishes unset from false for
// several layout switches.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v for optional numeric fields.
func Float(v float64) *float64 { return &v }
