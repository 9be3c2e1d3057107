package mapview

import (
	"math"
	"strconv"
	"strings"

	humanlib "github.com/dustin/go-humanize"

	"github.com/wmcornejo/reView/internal/domain/project"
)

// acronyms are the column-name tokens rendered in full caps by toHuman.
// Everything else gets Title Case.  Curated from the column vocabulary of
// reV supply-curve outputs.
var acronyms = map[string]struct{}{
	"ac":    {},
	"atb":   {},
	"capex": {},
	"cf":    {},
	"fcr":   {},
	"gid":   {},
	"gw":    {},
	"h2":    {},
	"id":    {},
	"kg":    {},
	"km":    {},
	"kv":    {},
	"lcoe":  {},
	"lcot":  {},
	"mi":    {},
	"mw":    {},
	"nrel":  {},
	"opex":  {},
	"pv":    {},
	"res":   {},
	"sc":    {},
	"sq":    {},
	"tw":    {},
}

// toHuman renders a column name for hover text: underscores become spaces,
// known acronyms go upper-case, other tokens Title Case.
func toHuman(col string) string {
	if col == "" {
		return ""
	}
	parts := strings.Split(col, "_")
	for i, part := range parts {
		if _, ok := acronyms[strings.ToLower(part)]; ok {
			parts[i] = strings.ToUpper(part)
		} else {
			parts[i] = project.ConvertToTitle(part)
		}
	}
	return strings.Join(parts, " ")
}

// floatString renders a float the way the frontend's templating does:
// shortest decimal form with ".0" kept on integral values ("45.0", not
// "45").  Hover values rely on this shape.
func floatString(v float64) string {
	if s, special := specialFloat(v); special {
		return s
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// commaFloat renders a float comma-grouped with ".0" kept on integral
// values ("1,234,567.0").  Used for title aggregation readouts and the H2
// supply hover line.
func commaFloat(v float64) string {
	if s, special := specialFloat(v); special {
		return s
	}
	s := humanlib.Commaf(v)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// commaFixed2 renders a float comma-grouped with exactly two decimal places
// ("1,234.50").  Used for the dist-to-load hover line.
func commaFixed2(v float64) string {
	if s, special := specialFloat(v); special {
		return s
	}
	return humanlib.FormatFloat("#,###.##", v)
}

// commaCount renders a row/point count with thousands separators.
func commaCount(n int) string {
	return humanlib.Comma(int64(n))
}

func specialFloat(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "nan", true
	case math.IsInf(v, 1):
		return "inf", true
	case math.IsInf(v, -1):
		return "-inf", true
	}
	return "", false
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
