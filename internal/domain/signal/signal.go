// Package signal models one serialized chart/map request: which scenario
// file(s) to plot, which column, whether the request is a difference view,
// and any user-supplied cost recalculation overrides.  Signals travel as
// JSON between the frontend's callback stages and are never persisted.
package signal

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/wmcornejo/reView/pkg/errors"
)

// Difference-mode variable names carry one of these suffixes.  A variable
// like "mean_lcoe_diff" plots the difference between two scenarios in the
// variable's own units; "_pctdiff" plots it as a percentage.
const (
	DiffSuffix        = "_diff"
	PercentDiffSuffix = "_pctdiff"
)

// RecalcOff is the Recalc value that disables the recalculation table.
const RecalcOff = "off"

// ─────────────────────────────────────────────────────────────────────────────
// Recalculation table
// ─────────────────────────────────────────────────────────────────────────────

// RecalcValues carries the user-supplied cost assumption overrides for one
// scenario.  A nil field means "use the scenario's own value".  Field order
// matches the display order of recalc annotations in titles.
type RecalcValues struct {
	FCR    *float64 `json:"fcr"`
	CAPEX  *float64 `json:"capex"`
	OPEX   *float64 `json:"opex"`
	Losses *float64 `json:"losses"`
}

// IsZero reports whether no override is set.
func (rv RecalcValues) IsZero() bool {
	return rv.FCR == nil && rv.CAPEX == nil && rv.OPEX == nil && rv.Losses == nil
}

// Annotations returns "name: value" strings for the set, non-zero overrides
// in fcr, capex, opex, losses order, ready to be joined into a title suffix.
// A zero override carries no information and is skipped.
func (rv RecalcValues) Annotations() []string {
	var msgs []string
	add := func(name string, v *float64) {
		if v != nil && *v != 0 {
			msgs = append(msgs, name+": "+strconv.FormatFloat(*v, 'g', -1, 64))
		}
	}
	add("fcr", rv.FCR)
	add("capex", rv.CAPEX)
	add("opex", rv.OPEX)
	add("losses", rv.Losses)
	return msgs
}

// RecalcTable pairs the overrides for the two compared scenarios.
type RecalcTable struct {
	ScenarioA RecalcValues `json:"scenario_a"`
	ScenarioB RecalcValues `json:"scenario_b"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Signal
// ─────────────────────────────────────────────────────────────────────────────

// Signal describes one map/chart request.
type Signal struct {
	// Path is the scenario file to plot.
	Path string `json:"path"`

	// Path2 is the comparison scenario file; only meaningful when Y carries
	// a difference suffix.
	Path2 string `json:"path2,omitempty"`

	// X and Y name the plotted columns; maps only use Y.
	X string `json:"x,omitempty"`
	Y string `json:"y"`

	// Project names the project configuration that resolves units, titles,
	// and scales for the plotted column.
	Project string `json:"project"`

	// Recalc toggles the recalculation table ("on"/"off").
	Recalc string `json:"recalc,omitempty"`

	// RecalcTable holds the cost overrides; ignored when Recalc is "off".
	RecalcTable *RecalcTable `json:"recalc_table,omitempty"`
}

// Unpack parses a serialized signal and validates it.
func Unpack(raw string) (*Signal, error) {
	var s Signal
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSignalInvalid, "malformed signal")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the fields every map request needs.
func (s *Signal) Validate() error {
	if strings.TrimSpace(s.Project) == "" {
		return errors.New(errors.ErrCodeSignalInvalid, "signal: project is required")
	}
	if strings.TrimSpace(s.Path) == "" {
		return errors.New(errors.ErrCodeSignalInvalid, "signal: path is required")
	}
	if strings.TrimSpace(s.Y) == "" {
		return errors.New(errors.ErrCodeSignalInvalid, "signal: y is required")
	}
	if s.IsDiff() && strings.TrimSpace(s.Path2) == "" {
		return errors.New(errors.ErrCodeSignalInvalid, "signal: path2 is required for difference variables")
	}
	return nil
}

// String returns the canonical JSON form of the signal; used as a cache key
// component.
func (s *Signal) String() string {
	raw, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(raw)
}

// EffectiveRecalcTable returns the recalc table, or nil when recalculation
// is switched off.
func (s *Signal) EffectiveRecalcTable() *RecalcTable {
	if s.Recalc == RecalcOff {
		return nil
	}
	return s.RecalcTable
}

// BaseY returns Y with any difference suffix removed.
func (s *Signal) BaseY() string {
	return BaseVariable(s.Y)
}

// IsDiff reports whether Y carries a difference suffix.
func (s *Signal) IsDiff() bool {
	return IsDiff(s.Y)
}

// IsPercentDiff reports whether Y carries the percentage-difference suffix.
func (s *Signal) IsPercentDiff() bool {
	return IsPercentDiff(s.Y)
}

// ─────────────────────────────────────────────────────────────────────────────
// Variable-name helpers
// ─────────────────────────────────────────────────────────────────────────────

// BaseVariable strips any difference suffix from a variable name.
func BaseVariable(y string) string {
	y = strings.TrimSuffix(y, PercentDiffSuffix)
	y = strings.TrimSuffix(y, DiffSuffix)
	return y
}

// IsDiff reports whether y names a difference variable of either flavor.
func IsDiff(y string) bool {
	return strings.HasSuffix(y, DiffSuffix) || strings.HasSuffix(y, PercentDiffSuffix)
}

// IsPercentDiff reports whether y names a percentage-difference variable.
func IsPercentDiff(y string) bool {
	return strings.HasSuffix(y, PercentDiffSuffix)
}
