package mapview

// ColorScales maps the color options offered by the dashboard to plotly
// colorscale names.  "Default" is an alias so the frontend can offer a
// neutral first entry.
var ColorScales = map[string]string{
	"Default":   "Viridis",
	"Blackbody": "Blackbody",
	"Bluered":   "Bluered",
	"Blues":     "Blues",
	"Cividis":   "Cividis",
	"Earth":     "Earth",
	"Electric":  "Electric",
	"Greens":    "Greens",
	"Greys":     "Greys",
	"Hot":       "Hot",
	"Jet":       "Jet",
	"Picnic":    "Picnic",
	"Portland":  "Portland",
	"Rainbow":   "Rainbow",
	"RdBu":      "RdBu",
	"Reds":      "Reds",
	"Viridis":   "Viridis",
	"YlGnBu":    "YlGnBu",
	"YlOrRd":    "YlOrRd",
}

// DefaultColorScale is used when a map request names no color option or an
// unknown one.
const DefaultColorScale = "Viridis"

// resolveColorScale returns the plotly colorscale for a dashboard color
// option, falling back to the default for unknown names.
func resolveColorScale(name string) string {
	if scale, ok := ColorScales[name]; ok {
		return scale
	}
	return DefaultColorScale
}

// discreteColors is the plotly qualitative palette assigned round-robin to
// category traces, matching what the frontend would pick on its own.
var discreteColors = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}
