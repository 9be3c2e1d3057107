package project

import (
	"regexp"
	"strings"
	"unicode"
)

// CommonRevColumnUnits maps standard reV supply-curve columns to display
// units.  Project configs overlay these with their own "units" entries; a
// unit of "category" switches the map to one trace per value.
var CommonRevColumnUnits = map[string]string{
	"area_sq_km":     "square km",
	"capacity":       "MW",
	"capacity_ac":    "MW",
	"print_capacity": "MW",
	"dist_km":        "km",
	"dist_mi":        "miles",
	"elevation":      "m",
	"latitude":       "degrees",
	"longitude":      "degrees",
	"lcot":           "$/MWh",
	"mean_cf":        "ratio",
	"mean_lcoe":      "$/MWh",
	"mean_res":       "varies",
	"total_lcoe":     "$/MWh",
	"trans_capacity": "MW",
	"trans_cap_cost": "$/MW",
}

// ScaleOverrides pins display bounds for columns whose tails would otherwise
// wash out the color ramp.  Overrides win over project-provided scales.
var ScaleOverrides = map[string]Scale{
	"mean_lcoe":  {Min: fptr(0), Max: fptr(200)},
	"total_lcoe": {Min: fptr(0), Max: fptr(200)},
}

func fptr(v float64) *float64 { return &v }

// revEndings matches the well-known reV output filename endings.  Stripping
// them from a file name yields the scenario name.  Alternation order
// matters: the compound endings must match before the bare extensions.
var revEndings = regexp.MustCompile(
	`_sc\.csv|_agg\.csv|_nrwal.*\.csv|_supply-curve\.csv|_supply-curve-aggregation\.csv|_sc\.parquet|\.h5|\.csv|\.parquet`,
)

// StripRevEndings derives a scenario name from a reV output file name.
func StripRevEndings(filename string) string {
	return revEndings.ReplaceAllString(filename, "")
}

// ConvertToTitle turns a file stem or column name into a display name:
// underscores become spaces and each word is title-cased.
func ConvertToTitle(name string) string {
	return titleCase(strings.ReplaceAll(name, "_", " "))
}

// titleCase upper-cases the first letter of every word, where a word starts
// after any non-letter rune.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
