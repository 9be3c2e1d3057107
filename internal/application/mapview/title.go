package mapview

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/wmcornejo/reView/internal/domain/dataset"
	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/internal/domain/signal"
)

// Aggregation names how a variable collapses to its title readout.
type Aggregation string

// Variable aggregation flavors.
const (
	AggregationMean Aggregation = "mean"
	AggregationSum  Aggregation = "sum"
)

// Aggregations maps reV supply-curve variables to the aggregation shown in
// map titles.  Quantities sum; rates and costs average.  Variables not
// listed here average.
var Aggregations = map[string]Aggregation{
	"area_sq_km":           AggregationSum,
	"capacity":             AggregationSum,
	"capacity_ac":          AggregationSum,
	"print_capacity":       AggregationSum,
	"trans_capacity":       AggregationSum,
	"hydrogen_annual_kg":   AggregationSum,
	"demand_connect_count": AggregationSum,
	"dist_km":              AggregationMean,
	"dist_mi":              AggregationMean,
	"elevation":            AggregationMean,
	"lcot":                 AggregationMean,
	"mean_cf":              AggregationMean,
	"mean_lcoe":            AggregationMean,
	"mean_res":             AggregationMean,
	"total_lcoe":           AggregationMean,
	"trans_cap_cost":       AggregationMean,
}

// recalcVariables are the cost assumptions that can appear encoded in
// least-cost scenario file names.
var recalcVariables = []string{"fcr", "capex", "opex", "losses"}

// BuildTitle composes the map/chart title for one request: scenario name(s),
// variable title, aggregation readout, and selection counts.  frame is the
// data after selections were applied; it may be nil when no data was loaded
// (scenario-name-only titles).
func BuildTitle(frame *dataset.Frame, sig *signal.Signal, cfg *project.Config, mapSel, chartSel *Selection) string {
	y := sig.Y
	y0 := sig.BaseY()
	diff := sig.IsDiff()

	units := cfg.UnitsFor(y0)
	if diff && sig.IsPercentDiff() {
		units = "%"
	}

	recalcTable := sig.EffectiveRecalcTable()

	// Scenario name, with user cost overrides appended unless the name
	// already encodes them (least-cost outputs).
	s1 := buildName(sig.Path)
	if recalcTable != nil && !strings.Contains(strings.ToLower(s1), "least") {
		if msgs := recalcTable.ScenarioA.Annotations(); len(msgs) > 0 {
			s1 += " (" + strings.Join(msgs, ", ") + ")"
		}
	}
	if strings.Contains(strings.ToLower(s1), "least") {
		s1 = inferRecalc(s1)
	}

	varTitle, ok := cfg.TitleFor(y0)
	if !ok {
		varTitle = project.ConvertToTitle(y)
	}
	title := s1 + "<br>" + varTitle

	agg, ok := Aggregations[y0]
	if !ok {
		agg = AggregationMean
	}
	conditioner := "Average"
	if agg == AggregationSum {
		conditioner = "Total"
	}

	if diff {
		s2 := strings.ReplaceAll(filepath.Base(sig.Path2), "_sc.csv", "")
		parts := strings.Split(s2, "_")
		for i, p := range parts {
			parts[i] = capitalize(p)
		}
		s2 = strings.Join(parts, " ")
		if recalcTable != nil {
			if msgs := recalcTable.ScenarioB.Annotations(); len(msgs) > 0 {
				s2 += " (" + strings.Join(msgs, ", ") + ")"
			}
		}
		title = s1 + " vs. <br>" + s2 + "<br>" + varTitle
		conditioner = units + " Difference | Average"
	}

	yExists := y0 != "" && strings.ToLower(y0) != "none"
	if frame != nil && yExists && units != "category" && frame.IsNumeric(y) {
		var ag float64
		var punits []string
		if y0 == "capacity" && units != "%" {
			val, _ := aggregate(frame, y, agg)
			ag = roundTo(val/1_000_000, 4)
			punits = []string{"TW"}
			conditioner = strings.ReplaceAll(conditioner, "Average", "Total")
		} else {
			val, _ := aggregate(frame, y, agg)
			ag = roundTo(val, 2)
			if !diff {
				punits = []string{cfg.UnitsFor(y0)}
			}
		}
		parts := append([]string{title, "  |  " + conditioner + ": " + commaFloat(ag)}, punits...)
		title = strings.Join(parts, " ")

		if frame.IsNumeric("hydrogen_annual_kg") {
			sum, _ := frame.Sum("hydrogen_annual_kg")
			title = title + " " + "  |  Total H2: " + commaFloat(roundTo(sum, 2))
		}
	}

	if mapSel != nil {
		title = title + "  |  " + "Selected point count: " + commaCount(mapSel.Count())
	}
	if chartSel != nil {
		title = title + "<br>" + "Selected point count: " + commaCount(chartSel.Count())
	}

	return title
}

func aggregate(frame *dataset.Frame, col string, agg Aggregation) (float64, error) {
	if agg == AggregationSum {
		return frame.Sum(col)
	}
	return frame.Mean(col)
}

// buildName derives a scenario display name from an output file path: strip
// the reV filename endings, split on underscores, capitalize each token.
// Empty tokens survive, so doubled underscores become doubled spaces —
// inferRecalc keys off that.
func buildName(path string) string {
	name := project.StripRevEndings(filepath.Base(path))
	parts := strings.Split(name, "_")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

// inferRecalc rewrites a least-cost scenario name whose file name encodes
// recalculated cost assumptions, e.g.
//
//	"Least Cost Mean Lcoe  Fcr-098 Sites"
//
// becomes "Least Cost Mean Lcoe (Fcr: .098)".  The last token is dropped,
// dashes read as decimal points, and the segment after the doubled space is
// rewritten as "name: value" pairs.
func inferRecalc(title string) string {
	if !strings.Contains(strings.ToLower(title), "least") {
		return title
	}
	words := strings.Split(title, " ")
	title = strings.Join(words[:len(words)-1], " ")

	lower := strings.ToLower(title)
	found := false
	for _, v := range recalcVariables {
		if strings.Contains(lower, v) {
			found = true
			break
		}
	}
	if !found {
		return title
	}

	title = strings.ReplaceAll(title, "-", ".")
	segments := strings.Split(title, "  ")
	if len(segments) < 2 {
		return title
	}
	var rewritten []string
	for _, part := range strings.Fields(segments[1]) {
		var letters strings.Builder
		for _, r := range part {
			if unicode.IsLetter(r) {
				letters.WriteRune(r)
			}
		}
		numbers := part
		if letters.Len() > 0 {
			numbers = strings.ReplaceAll(part, letters.String(), "")
		}
		rewritten = append(rewritten, letters.String()+": "+numbers)
	}
	return segments[0] + " (" + strings.Join(rewritten, ", ") + ")"
}
