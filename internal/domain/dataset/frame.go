// Package dataset implements Frame, the in-memory tabular form of one
// scenario file: one row per spatial point, typed columns addressed by name.
// Frames are transient — loaded per request or pulled from cache — and every
// transform returns a copy; caller data is never mutated in place.
package dataset

import (
	"encoding/json"
	"math"

	"github.com/wmcornejo/reView/pkg/errors"
)

// Frame holds ordered, named, typed column vectors of equal length.
// Supported cell types are float64 and string; reV scenario outputs carry
// nothing else that the map service consumes.
type Frame struct {
	cols   []string
	floats map[string][]float64
	strs   map[string][]string
	rows   int
}

// New returns an empty Frame with no columns and no rows.
func New() *Frame {
	return &Frame{
		floats: make(map[string][]float64),
		strs:   make(map[string][]string),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Column construction
// ─────────────────────────────────────────────────────────────────────────────

// AddFloats appends a numeric column.  The first column added fixes the row
// count; subsequent columns must match it.
func (f *Frame) AddFloats(name string, vals []float64) error {
	if err := f.checkAdd(name, len(vals)); err != nil {
		return err
	}
	f.cols = append(f.cols, name)
	f.floats[name] = vals
	f.rows = len(vals)
	return nil
}

// AddStrings appends a string column.  The first column added fixes the row
// count; subsequent columns must match it.
func (f *Frame) AddStrings(name string, vals []string) error {
	if err := f.checkAdd(name, len(vals)); err != nil {
		return err
	}
	f.cols = append(f.cols, name)
	f.strs[name] = vals
	f.rows = len(vals)
	return nil
}

func (f *Frame) checkAdd(name string, n int) error {
	if name == "" {
		return errors.New(errors.ErrCodeValidation, "dataset: column name is empty")
	}
	if f.Has(name) {
		return errors.Newf(errors.ErrCodeValidation, "dataset: column %q already exists", name)
	}
	if len(f.cols) > 0 && n != f.rows {
		return errors.Newf(errors.ErrCodeValidation,
			"dataset: column %q has %d values; frame has %d rows", name, n, f.rows)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Accessors
// ─────────────────────────────────────────────────────────────────────────────

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	copy(out, f.cols)
	return out
}

// Len returns the row count.
func (f *Frame) Len() int {
	return f.rows
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return f.rows == 0
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	_, fok := f.floats[name]
	_, sok := f.strs[name]
	return fok || sok
}

// IsNumeric reports whether a column exists and holds float64 values.
func (f *Frame) IsNumeric(name string) bool {
	_, ok := f.floats[name]
	return ok
}

// Floats returns the backing slice of a numeric column.  Callers must treat
// the slice as read-only; transforms that need to write use WithFloats.
func (f *Frame) Floats(name string) ([]float64, bool) {
	vals, ok := f.floats[name]
	return vals, ok
}

// Strings returns the backing slice of a string column.  Callers must treat
// the slice as read-only; transforms that need to write use WithStrings.
func (f *Frame) Strings(name string) ([]string, bool) {
	vals, ok := f.strs[name]
	return vals, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregations
// ─────────────────────────────────────────────────────────────────────────────

// Min returns the minimum of a numeric column; NaN when the frame is empty.
func (f *Frame) Min(name string) (float64, error) {
	vals, err := f.numeric(name)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return math.NaN(), nil
	}
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min, nil
}

// Max returns the maximum of a numeric column; NaN when the frame is empty.
func (f *Frame) Max(name string) (float64, error) {
	vals, err := f.numeric(name)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return math.NaN(), nil
	}
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

// Sum returns the sum of a numeric column; 0 when the frame is empty.
func (f *Frame) Sum(name string) (float64, error) {
	vals, err := f.numeric(name)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum, nil
}

// Mean returns the mean of a numeric column; NaN when the frame is empty.
func (f *Frame) Mean(name string) (float64, error) {
	vals, err := f.numeric(name)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return math.NaN(), nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), nil
}

func (f *Frame) numeric(name string) ([]float64, error) {
	vals, ok := f.floats[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound, "dataset: no numeric column %q", name)
	}
	return vals, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Copying transforms
// ─────────────────────────────────────────────────────────────────────────────

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	out := New()
	out.cols = make([]string, len(f.cols))
	copy(out.cols, f.cols)
	out.rows = f.rows
	for name, vals := range f.floats {
		cp := make([]float64, len(vals))
		copy(cp, vals)
		out.floats[name] = cp
	}
	for name, vals := range f.strs {
		cp := make([]string, len(vals))
		copy(cp, vals)
		out.strs[name] = cp
	}
	return out
}

// WithFloats returns a copy of the frame with a numeric column added or
// replaced.  The value count must match the frame's row count.
func (f *Frame) WithFloats(name string, vals []float64) (*Frame, error) {
	if len(f.cols) > 0 && len(vals) != f.rows {
		return nil, errors.Newf(errors.ErrCodeValidation,
			"dataset: column %q has %d values; frame has %d rows", name, len(vals), f.rows)
	}
	out := f.Copy()
	cp := make([]float64, len(vals))
	copy(cp, vals)
	if !out.Has(name) {
		out.cols = append(out.cols, name)
	}
	delete(out.strs, name)
	out.floats[name] = cp
	out.rows = len(cp)
	return out, nil
}

// WithStrings returns a copy of the frame with a string column added or
// replaced.  The value count must match the frame's row count.
func (f *Frame) WithStrings(name string, vals []string) (*Frame, error) {
	if len(f.cols) > 0 && len(vals) != f.rows {
		return nil, errors.Newf(errors.ErrCodeValidation,
			"dataset: column %q has %d values; frame has %d rows", name, len(vals), f.rows)
	}
	out := f.Copy()
	cp := make([]string, len(vals))
	copy(cp, vals)
	if !out.Has(name) {
		out.cols = append(out.cols, name)
	}
	delete(out.floats, name)
	out.strs[name] = cp
	out.rows = len(cp)
	return out, nil
}

// Select returns a copy of the frame keeping only the rows where mask is
// true.  The mask length must match the row count.
func (f *Frame) Select(mask []bool) (*Frame, error) {
	if len(mask) != f.rows {
		return nil, errors.Newf(errors.ErrCodeValidation,
			"dataset: mask has %d entries; frame has %d rows", len(mask), f.rows)
	}
	out := New()
	out.cols = make([]string, len(f.cols))
	copy(out.cols, f.cols)

	kept := 0
	for _, m := range mask {
		if m {
			kept++
		}
	}
	for name, vals := range f.floats {
		cp := make([]float64, 0, kept)
		for i, v := range vals {
			if mask[i] {
				cp = append(cp, v)
			}
		}
		out.floats[name] = cp
	}
	for name, vals := range f.strs {
		cp := make([]string, 0, kept)
		for i, v := range vals {
			if mask[i] {
				cp = append(cp, v)
			}
		}
		out.strs[name] = cp
	}
	out.rows = kept
	return out, nil
}

// FilterByGIDs returns a copy keeping only rows whose value in the given
// numeric column is a member of gids.  Used to apply map/chart/click
// selections, which identify points by sc_point_gid.
func (f *Frame) FilterByGIDs(name string, gids []float64) (*Frame, error) {
	vals, ok := f.floats[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound, "dataset: no numeric column %q", name)
	}
	keep := make(map[float64]struct{}, len(gids))
	for _, g := range gids {
		keep[g] = struct{}{}
	}
	mask := make([]bool, len(vals))
	for i, v := range vals {
		_, mask[i] = keep[v]
	}
	return f.Select(mask)
}

// ─────────────────────────────────────────────────────────────────────────────
// JSON round-trip (cache storage)
// ─────────────────────────────────────────────────────────────────────────────

type frameJSON struct {
	Columns []string             `json:"columns"`
	Floats  map[string][]float64 `json:"floats,omitempty"`
	Strings map[string][]string  `json:"strings,omitempty"`
	Rows    int                  `json:"rows"`
}

// MarshalJSON implements json.Marshaler so frames can live in the cache.
func (f *Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(frameJSON{
		Columns: f.cols,
		Floats:  f.floats,
		Strings: f.strs,
		Rows:    f.rows,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var raw frameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.cols = raw.Columns
	f.floats = raw.Floats
	f.strs = raw.Strings
	f.rows = raw.Rows
	if f.floats == nil {
		f.floats = make(map[string][]float64)
	}
	if f.strs == nil {
		f.strs = make(map[string][]string)
	}
	return nil
}
